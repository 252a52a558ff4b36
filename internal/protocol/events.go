package protocol

import (
	"strconv"
	"strings"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// Request is one of ComRequest, InpRequest, GetRequest, DelRequest.
type Request interface{ isRequest() }

// ComRequest registers a command template and requests a handle.
type ComRequest struct{ Template string }

// InpRequest submits one input to a registered command.
type InpRequest struct {
	Handle uint32
	JobID  uint64
	Input  string
}

// GetRequest queries node state. Query is "cores" or "comms".
type GetRequest struct{ Query string }

// DelRequest stops and frees a registered command.
type DelRequest struct{ Handle uint32 }

func (ComRequest) isRequest() {}
func (InpRequest) isRequest() {}
func (GetRequest) isRequest() {}
func (DelRequest) isRequest() {}

// EncodeRequest renders a Request as a CRLF-terminated wire frame.
func EncodeRequest(r Request) string {
	switch req := r.(type) {
	case ComRequest:
		return "com " + req.Template + "\r\n"
	case InpRequest:
		return "inp " + strconv.FormatUint(uint64(req.Handle), 10) + " " +
			strconv.FormatUint(req.JobID, 10) + " " + req.Input + "\r\n"
	case GetRequest:
		return "get " + req.Query + "\r\n"
	case DelRequest:
		return "del " + strconv.FormatUint(uint64(req.Handle), 10) + "\r\n"
	default:
		return ""
	}
}

// ParseRequest parses one request frame body (CRLF already stripped).
func ParseRequest(body string) (Request, error) {
	if len(body) < 5 {
		return nil, concurrerrors.Protocol("request frame too short: " + strconv.Quote(body))
	}
	verb := body[:3]
	if body[3] != ' ' {
		return nil, concurrerrors.Protocol("malformed request verb: " + strconv.Quote(body))
	}
	arg := body[4:]

	switch verb {
	case "com":
		if arg == "" {
			return nil, concurrerrors.Protocol("com requires a template")
		}
		return ComRequest{Template: arg}, nil
	case "get":
		if arg != "cores" && arg != "comms" {
			return nil, concurrerrors.Protocol("unrecognized get query: " + strconv.Quote(arg))
		}
		return GetRequest{Query: arg}, nil
	case "del":
		handle, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, concurrerrors.Protocol("malformed del handle: " + strconv.Quote(arg))
		}
		return DelRequest{Handle: uint32(handle)}, nil
	case "inp":
		parts := strings.SplitN(arg, " ", 3)
		if len(parts) != 3 {
			return nil, concurrerrors.Protocol("malformed inp arguments: " + strconv.Quote(arg))
		}
		handle, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, concurrerrors.Protocol("malformed inp handle: " + strconv.Quote(parts[0]))
		}
		jobID, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, concurrerrors.Protocol("malformed inp job id: " + strconv.Quote(parts[1]))
		}
		return InpRequest{Handle: uint32(handle), JobID: jobID, Input: parts[2]}, nil
	default:
		return nil, concurrerrors.Protocol("unrecognized verb: " + strconv.Quote(verb))
	}
}

// Response is one of OutputResponse, ErrorResponse, InfoResponse.
type Response interface{ isResponse() }

// OutputResponse carries a completed subprocess outcome.
type OutputResponse struct {
	JobID  uint64
	Status uint8
	Stdout string
	Stderr string
}

// ErrorResponse carries a per-job failure.
type ErrorResponse struct {
	JobID   uint64
	Message string
}

// InfoResponse carries an arbitrary informational line (get/del/com replies).
type InfoResponse struct{ Line string }

func (OutputResponse) isResponse() {}
func (ErrorResponse) isResponse()  {}
func (InfoResponse) isResponse()   {}

// EncodeResponse renders a Response as wire frame(s). Output spans three
// LF-separated lines (status, escaped stdout, escaped stderr); the whole
// frame is CRLF-terminated. Error and Info are single CRLF-terminated lines.
func EncodeResponse(r Response) string {
	switch resp := r.(type) {
	case OutputResponse:
		return strconv.FormatUint(resp.JobID, 10) + " " + strconv.FormatUint(uint64(resp.Status), 10) +
			"\n" + Escape(resp.Stdout) + "\n" + Escape(resp.Stderr) + "\r\n"
	case ErrorResponse:
		return "ERR " + strconv.FormatUint(resp.JobID, 10) + " " + Escape(resp.Message) + "\r\n"
	case InfoResponse:
		return resp.Line + "\r\n"
	default:
		return ""
	}
}

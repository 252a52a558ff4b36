// Package protocol implements the line-framed wire codec shared by the
// concurr client and server: CRLF-terminated ASCII frames with a 3-letter
// verb (com/inp/get/del) and three response variants (Output/Error/Info).
package protocol

import (
	"bufio"
	"strconv"
	"strings"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// ReadFrame reads one CRLF-terminated frame and returns its body with the
// trailing CRLF stripped. A bare LF with no preceding CR is treated as a
// framing error, per the wire protocol's CRLF-only contract.
func ReadFrame(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasSuffix(line, "\r") {
		return "", concurrerrors.Protocol("frame not terminated by CRLF")
	}
	return strings.TrimSuffix(line, "\r"), nil
}

// readLFLine reads one line terminated by LF (with an optional CR) without
// requiring CRLF — used for the interior lines of a multi-line Output
// response, which are separated by raw LF per EncodeResponse.
func readLFLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ReadRequest reads and parses one request frame.
func ReadRequest(r *bufio.Reader) (Request, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return ParseRequest(body)
}

// WriteRequest encodes and writes one request frame.
func WriteRequest(w *bufio.Writer, req Request) error {
	if _, err := w.WriteString(EncodeRequest(req)); err != nil {
		return err
	}
	return w.Flush()
}

// WriteResponse encodes and writes one response frame.
func WriteResponse(w *bufio.Writer, resp Response) error {
	if _, err := w.WriteString(EncodeResponse(resp)); err != nil {
		return err
	}
	return w.Flush()
}

// ReadOutputOrError reads the response to an "inp" request: either a
// three-line Output (status line, escaped stdout, escaped stderr) or a
// single-line Error ("ERR <job_id> <escaped message>").
func ReadOutputOrError(r *bufio.Reader) (Response, error) {
	first, err := readLFLine(r)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(first, "ERR ") {
		rest := strings.TrimPrefix(first, "ERR ")
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) != 2 {
			return nil, concurrerrors.Protocol("malformed error response: " + strconv.Quote(first))
		}
		jobID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, concurrerrors.Protocol("malformed error job id: " + strconv.Quote(parts[0]))
		}
		return ErrorResponse{JobID: jobID, Message: Unescape(parts[1])}, nil
	}

	parts := strings.SplitN(first, " ", 2)
	if len(parts) != 2 {
		return nil, concurrerrors.Protocol("malformed output status line: " + strconv.Quote(first))
	}
	jobID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, concurrerrors.Protocol("malformed output job id: " + strconv.Quote(parts[0]))
	}
	status, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, concurrerrors.Protocol("malformed output status: " + strconv.Quote(parts[1]))
	}

	stdoutLine, err := readLFLine(r)
	if err != nil {
		return nil, err
	}
	stderrLine, err := readLFLine(r)
	if err != nil {
		return nil, err
	}

	return OutputResponse{
		JobID:  jobID,
		Status: uint8(status),
		Stdout: Unescape(stdoutLine),
		Stderr: Unescape(stderrLine),
	}, nil
}

// ReadInfo reads a single-line informational response (com/get/del replies).
func ReadInfo(r *bufio.Reader) (InfoResponse, error) {
	line, err := ReadFrame(r)
	if err != nil {
		return InfoResponse{}, err
	}
	return InfoResponse{Line: line}, nil
}

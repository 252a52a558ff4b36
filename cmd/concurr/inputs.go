package main

import (
	"bufio"
	"os"
	"strings"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// parseArgs splits the CLI arguments into a command template and its raw
// input tokens, per the ":"/"::" group grammar: one optional literal-string
// group, one optional file-path group, each running to the end of args or
// the next group marker. Either marker appearing a second time is a Setup
// error, matching the declared non-goal of multi-group Cartesian expansion.
func parseArgs(args []string) (template string, literals, files []string, err error) {
	if len(args) == 0 {
		return "", nil, nil, concurrerrors.Setup("missing command template", nil)
	}
	template = args[0]
	rest := args[1:]

	var group string // "" | ":" | "::"
	sawColon, sawDoubleColon := false, false
	for _, tok := range rest {
		switch tok {
		case ":":
			if sawColon {
				return "", nil, nil, concurrerrors.Setup("duplicate ':' group", nil)
			}
			sawColon = true
			group = ":"
			continue
		case "::":
			if sawDoubleColon {
				return "", nil, nil, concurrerrors.Setup("duplicate '::' group", nil)
			}
			sawDoubleColon = true
			group = "::"
			continue
		}
		switch group {
		case ":":
			literals = append(literals, tok)
		case "::":
			files = append(files, tok)
		default:
			return "", nil, nil, concurrerrors.Setup("unexpected argument before ':' or '::'", nil)
		}
	}
	return template, literals, files, nil
}

// resolveInputs gathers inputs in priority order: literal group, then file
// group (each file's non-blank, non-'#'-prefixed lines), then stdin if
// redirected. Empty resolution is a Setup error.
func resolveInputs(literals, files []string, stdinRedirected bool, stdin *os.File) ([]string, error) {
	var inputs []string
	inputs = append(inputs, literals...)

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, concurrerrors.Setup("opening input file "+path, err)
		}
		lines, err := readInputLines(f)
		f.Close()
		if err != nil {
			return nil, concurrerrors.Setup("reading input file "+path, err)
		}
		inputs = append(inputs, lines...)
	}

	if len(literals) == 0 && len(files) == 0 && stdinRedirected {
		lines, err := readInputLines(stdin)
		if err != nil {
			return nil, concurrerrors.Setup("reading redirected stdin", err)
		}
		inputs = append(inputs, lines...)
	}

	if len(inputs) == 0 {
		return nil, concurrerrors.Setup("no inputs resolved from any source", nil)
	}
	return inputs, nil
}

// readInputLines trims each line and skips blanks and '#'-prefixed comments.
func readInputLines(r *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

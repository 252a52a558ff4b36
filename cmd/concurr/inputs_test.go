package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseArgs_NoGroups(t *testing.T) {
	tpl, literals, files, err := parseArgs([]string{"echo {}"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if tpl != "echo {}" || literals != nil || files != nil {
		t.Fatalf("unexpected result: %q %v %v", tpl, literals, files)
	}
}

func TestParseArgs_ColonGroup(t *testing.T) {
	tpl, literals, files, err := parseArgs([]string{"echo {}", ":", "a", "b", "c"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if tpl != "echo {}" {
		t.Fatalf("unexpected template %q", tpl)
	}
	if !reflect.DeepEqual(literals, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected literals: %v", literals)
	}
	if files != nil {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestParseArgs_DoubleColonGroup(t *testing.T) {
	tpl, literals, files, err := parseArgs([]string{"echo {}", "::", "a.txt", "b.txt"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if tpl != "echo {}" || literals != nil {
		t.Fatalf("unexpected result: %q %v", tpl, literals)
	}
	if !reflect.DeepEqual(files, []string{"a.txt", "b.txt"}) {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestParseArgs_MissingTemplate(t *testing.T) {
	if _, _, _, err := parseArgs(nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestParseArgs_DuplicateGroupMarker(t *testing.T) {
	if _, _, _, err := parseArgs([]string{"echo {}", ":", "a", ":", "b"}); err == nil {
		t.Fatalf("expected error for duplicate ':' group")
	}
}

func TestParseArgs_TokenBeforeGroup(t *testing.T) {
	if _, _, _, err := parseArgs([]string{"echo {}", "stray"}); err == nil {
		t.Fatalf("expected error for token before any group marker")
	}
}

func TestResolveInputs_Literals(t *testing.T) {
	inputs, err := resolveInputs([]string{"a", "b"}, nil, false, nil)
	if err != nil {
		t.Fatalf("resolveInputs: %v", err)
	}
	if !reflect.DeepEqual(inputs, []string{"a", "b"}) {
		t.Fatalf("unexpected inputs: %v", inputs)
	}
}

func TestResolveInputs_FileSkipsBlankAndComment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	contents := "a\n\n# comment\n  b  \n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	inputs, err := resolveInputs(nil, []string{path}, false, nil)
	if err != nil {
		t.Fatalf("resolveInputs: %v", err)
	}
	if !reflect.DeepEqual(inputs, []string{"a", "b"}) {
		t.Fatalf("unexpected inputs: %v", inputs)
	}
}

func TestResolveInputs_NoneResolved(t *testing.T) {
	if _, err := resolveInputs(nil, nil, false, nil); err == nil {
		t.Fatalf("expected error when no inputs resolve")
	}
}

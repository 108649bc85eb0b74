package cli

import (
	"bytes"
	"testing"
)

func TestWriteTablePadsToWidestCell(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, []string{"NAME", "UNREAD"}, [][]string{
		{"devel", "3"},
		{"a", "12"},
	})
	if err != nil {
		t.Fatalf("writeTable: %v", err)
	}

	want := "NAME   UNREAD\n" +
		"devel  3\n" +
		"a      12\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteTableIgnoresANSIWidth(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, nil, [][]string{
		{"\x1b[33mbb\x1b[0m", "x"},
		{"aaa", "y"},
	})
	if err != nil {
		t.Fatalf("writeTable: %v", err)
	}

	want := "\x1b[33mbb\x1b[0m   x\n" +
		"aaa  y\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, nil, nil); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestStripANSI(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"plain":               "plain",
		"\x1b[1;32mok\x1b[0m": "ok",
		"a\x1b[2mb\x1b[0mc":   "abc",
	}
	for in, want := range cases {
		if got := stripANSI(in); got != want {
			t.Errorf("stripANSI(%q) = %q, want %q", in, got, want)
		}
	}
}

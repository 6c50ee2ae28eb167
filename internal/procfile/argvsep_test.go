package procfile

import "testing"

func TestQuoteArgvLeavesLastByteUntouched(t *testing.T) {
	buf := []byte("a\x00b\x00")
	out, err := QuoteArgv(buf, len(buf), " ")
	if err != nil {
		t.Fatalf("QuoteArgv: %v", err)
	}
	if string(out) != "a b\x00" {
		t.Fatalf("out = %q, want %q", out, "a b\x00")
	}
}

func TestQuoteArgvEmptySepIsNoop(t *testing.T) {
	buf := []byte("a\x00b\x00")
	out, err := QuoteArgv(buf, len(buf), "")
	if err != nil {
		t.Fatalf("QuoteArgv: %v", err)
	}
	if string(out) != "a\x00b\x00" {
		t.Fatalf("out = %q, want unchanged", out)
	}
}

func TestQuoteArgvBackslashEscapes(t *testing.T) {
	cases := []struct {
		sep  string
		want byte
	}{
		{`\b`, ' '},
		{`\t`, '\t'},
		{`\n`, '\n'},
		{`\v`, '\v'},
		{`\r`, '\r'},
		{`\f`, '\f'},
	}
	for _, tc := range cases {
		buf := []byte("a\x00b\x00")
		out, err := QuoteArgv(buf, len(buf), tc.sep)
		if err != nil {
			t.Fatalf("QuoteArgv(%q): %v", tc.sep, err)
		}
		if out[1] != tc.want {
			t.Fatalf("QuoteArgv(%q) = %q, want byte %q at index 1", tc.sep, out, tc.want)
		}
	}
}

func TestQuoteArgvNulEscapeIsNoop(t *testing.T) {
	buf := []byte("a\x00b\x00")
	out, err := QuoteArgv(buf, len(buf), `\0`)
	if err != nil {
		t.Fatalf("QuoteArgv: %v", err)
	}
	if string(out) != "a\x00b\x00" {
		t.Fatalf("out = %q, want unchanged", out)
	}
}

func TestValidateArgvSepRejectsInvalidForm(t *testing.T) {
	if err := ValidateArgvSep("xy"); err == nil {
		t.Fatal("expected InvalidConfigError for multi-char non-escape separator")
	}
	if err := ValidateArgvSep(`\q`); err == nil {
		t.Fatal("expected InvalidConfigError for unrecognized escape")
	}
}

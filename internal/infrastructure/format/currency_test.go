package format

import (
	"strings"
	"testing"
	"unicode"
)

// normalize 去除所有空白（含不換行空白），方便比對本地化輸出。
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestParseCode(t *testing.T) {
	cases := map[string]Code{"": CodeFCFA, "fcfa": CodeFCFA, "XOF": CodeFCFA, "eur": CodeEUR}
	for in, want := range cases {
		got, err := ParseCode(in)
		if err != nil || got != want {
			t.Errorf("ParseCode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCode("USD"); err == nil {
		t.Fatalf("expected error for USD")
	}
	if _, err := ParseMode("fancy"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestConvertEUR(t *testing.T) {
	f := NewCurrencyFormatter(0)
	got := f.Convert(655957, CodeEUR)
	if got.StringFixed(2) != "1000.00" {
		t.Fatalf("expected 1000.00 EUR, got %s", got.StringFixed(2))
	}
	if f.Convert(1234, CodeFCFA).IntPart() != 1234 {
		t.Fatalf("FCFA must not be converted")
	}
}

func TestFormatStandard(t *testing.T) {
	f := NewCurrencyFormatter(DefaultEURRate)

	fcfa := normalize(f.Format(1234567.6, CodeFCFA, ModeStandard))
	if fcfa != "1234568F" {
		t.Fatalf("unexpected FCFA output %q", fcfa)
	}

	eur := normalize(f.Format(655957, CodeEUR, ModeStandard))
	if eur != "1000,00€" {
		t.Fatalf("unexpected EUR output %q", eur)
	}
}

func TestFormatCompact(t *testing.T) {
	f := NewCurrencyFormatter(DefaultEURRate)

	cases := []struct {
		value float64
		want  string
	}{
		{1_500_000, "1,5MF"},
		{2_000_000_000, "2MdF"},
		{12_340, "12,34kF"},
		{999, "999F"},
	}
	for _, tc := range cases {
		got := normalize(f.Format(tc.value, CodeFCFA, ModeCompact))
		if got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

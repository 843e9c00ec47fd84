package normalize

import "testing"

func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "google",
			out:  "google",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'b', 'i', 'n', 0x80, 'g'}),
			out:  "bing",
		},
		{
			name: "case fold",
			in:   "GooGLE",
			out:  "google",
		},
		{
			name: "remove zero-widths",
			in:   "ya​hoo‍",
			out:  "yahoo",
		},
		{
			name: "remove combining marks",
			in:   "bíng",
			out:  "bing",
		},
		{
			name: "width fold fullwidth",
			in:   "ＢＩＮＧ",
			out:  "bing",
		},
		{
			name: "collapse whitespace",
			in:   "  duck\t duck   go ",
			out:  "duck duck go",
		},
	}

	for _, tc := range tests {
		got := n.Normalize(tc.in)
		if got != tc.out {
			t.Fatalf("%s: Normalize(%q) = %q, want %q", tc.name, tc.in, got, tc.out)
		}
	}
}

func TestEngine_Buckets(t *testing.T) {
	n := New()

	tests := []struct {
		in  string
		out string
	}{
		{"google", "google"},
		{"Google", "google"},
		{"google-desktop", "google"},
		{"bing", "bing"},
		{"yahoo-en-GB", "yahoo"},
		{"Yahoo! Search", "yahoo"},
		{"duckduckgo", "other"},
		{"", "other"},
	}
	for _, tc := range tests {
		if got := n.Engine(tc.in); got != tc.out {
			t.Fatalf("Engine(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestLocale_Shape(t *testing.T) {
	n := New()

	tests := []struct {
		in  string
		out string
	}{
		{"en-US", "en-US"},
		{"EN_us", "en-US"},
		{"de", "de"},
		{"pt-br", "pt-BR"},
	}
	for _, tc := range tests {
		if got := n.Locale(tc.in); got != tc.out {
			t.Fatalf("Locale(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

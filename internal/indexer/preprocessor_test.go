package indexer

import "testing"

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t\n ", ""},
		{"crlf", "a\r\nb", "a\nb"},
		{"trailing spaces", "first.   \nsecond.\t", "first.\nsecond."},
		{"blank runs", "para one\n\n\n\npara two", "para one\n\npara two"},
		{"inner indentation kept", "  head\n  item", "head\n  item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preprocess(tt.in); got != tt.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package loxtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseExpectations(t *testing.T) {
	src := `print 1; // expect: 1
print "a b"; // expect: a b
// a plain comment
print 1 / 0; // expect runtime error: Division by zero.
`
	want := Expectation{
		Output:       []string{"1", "a b"},
		RuntimeError: "Division by zero.",
	}
	if diff := cmp.Diff(want, ParseExpectations(src)); diff != "" {
		t.Errorf("ParseExpectations() mismatch (-want +got):\n%s", diff)
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"1\n", []string{"1"}},
		{"1\n2\n", []string{"1", "2"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Lines(tt.in)); diff != "" {
			t.Errorf("Lines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestExpect(t *testing.T) {
	Expect(t, "var a = 1; { var a = 2; print a; } print a;", "2", "1")
}

package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLines(t *testing.T) {
	cases := []struct {
		name     string
		before   string
		after    string
		expected []string
	}{
		{"unchanged", "a\nb\n", "a\nb\n", nil},
		{"added", "a\n", "a\nb\n", []string{"+ b"}},
		{"removed", "a\nb\nc\n", "a\nc\n", []string{"- b"}},
		{"replaced", "a\nold\nc\n", "a\nnew\nc\n", []string{"- old", "+ new"}},
		{"from empty", "", "x\ny\n", []string{"+ x", "+ y"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, Lines(c.before, c.after)); diff != "" {
				t.Error(diff)
			}
		})
	}
}

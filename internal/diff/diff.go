// Package diff reports which lines of a rendered list changed between two refreshes.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var dmp *diffmatchpatch.DiffMatchPatch

func init() {
	dmp = diffmatchpatch.New()
}

// Lines compares two texts line by line and returns the removed lines prefixed with "- " and the
// added ones with "+ ", in document order. Unchanged lines are left out.
func Lines(before, after string) []string {
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}

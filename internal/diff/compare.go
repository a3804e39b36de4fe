// Package diff renders the line-level difference between two text blobs,
// typically a file at a commit against the same file at its parent.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Op classifies one line of a comparison.
type Op int

const (
	OpEqual Op = iota
	OpAdded
	OpRemoved
)

// Line is a single comparison row. LeftNo/RightNo are 1-based line numbers
// in the respective blobs, 0 when the line has no counterpart on that side.
type Line struct {
	Op      Op
	Content string
	LeftNo  int
	RightNo int
}

// Result is the full comparison of two labelled blobs.
type Result struct {
	Lines      []Line
	LeftLabel  string
	RightLabel string
}

// Compare diffs two blobs. Labels name the sides for rendering, e.g.
// "abc123:src/a.go" and "def456:src/a.go". An absent blob compares as
// empty, which renders the other side as fully added or removed.
func Compare(leftText, rightText, leftLabel, rightLabel string) *Result {
	left := splitLines(leftText)
	right := splitLines(rightText)

	result := &Result{LeftLabel: leftLabel, RightLabel: rightLabel}

	opcodes, err := opCodes(left, right)
	if err != nil {
		// The matcher can panic on pathological input; fall back to a
		// positional comparison instead of losing the whole view.
		result.Lines = positionalDiff(left, right)
		return result
	}

	leftNo, rightNo := 1, 1
	for _, oc := range opcodes {
		switch oc.Tag {
		case 'e':
			for i := oc.I1; i < oc.I2; i++ {
				result.Lines = append(result.Lines, Line{
					Op: OpEqual, Content: left[i], LeftNo: leftNo, RightNo: rightNo,
				})
				leftNo++
				rightNo++
			}
		case 'd':
			for i := oc.I1; i < oc.I2; i++ {
				result.Lines = append(result.Lines, Line{
					Op: OpRemoved, Content: left[i], LeftNo: leftNo,
				})
				leftNo++
			}
		case 'i':
			for j := oc.J1; j < oc.J2; j++ {
				result.Lines = append(result.Lines, Line{
					Op: OpAdded, Content: right[j], RightNo: rightNo,
				})
				rightNo++
			}
		case 'r':
			for i := oc.I1; i < oc.I2; i++ {
				result.Lines = append(result.Lines, Line{
					Op: OpRemoved, Content: left[i], LeftNo: leftNo,
				})
				leftNo++
			}
			for j := oc.J1; j < oc.J2; j++ {
				result.Lines = append(result.Lines, Line{
					Op: OpAdded, Content: right[j], RightNo: rightNo,
				})
				rightNo++
			}
		}
	}
	return result
}

func opCodes(left, right []string) (ocs []difflib.OpCode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("line matcher failed: %v", r)
		}
	}()
	matcher := difflib.NewMatcher(left, right)
	return matcher.GetOpCodes(), nil
}

// positionalDiff pairs lines by index, marking mismatches as remove+add.
func positionalDiff(left, right []string) []Line {
	var lines []Line
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		switch {
		case i < len(left) && i < len(right) && left[i] == right[i]:
			lines = append(lines, Line{Op: OpEqual, Content: left[i], LeftNo: i + 1, RightNo: i + 1})
		case i < len(left) && i < len(right):
			lines = append(lines, Line{Op: OpRemoved, Content: left[i], LeftNo: i + 1})
			lines = append(lines, Line{Op: OpAdded, Content: right[i], RightNo: i + 1})
		case i < len(left):
			lines = append(lines, Line{Op: OpRemoved, Content: left[i], LeftNo: i + 1})
		default:
			lines = append(lines, Line{Op: OpAdded, Content: right[i], RightNo: i + 1})
		}
	}
	return lines
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Stats counts added, removed and unchanged lines.
func (r *Result) Stats() (added, removed, unchanged int) {
	for _, line := range r.Lines {
		switch line.Op {
		case OpAdded:
			added++
		case OpRemoved:
			removed++
		default:
			unchanged++
		}
	}
	return
}

// HasChanges reports whether the two blobs differ at all.
func (r *Result) HasChanges() bool {
	for _, line := range r.Lines {
		if line.Op != OpEqual {
			return true
		}
	}
	return false
}

package parser

import (
	"github.com/edwingeng/deque"
)

// Block is a line together with the lines it owns: every following line
// indented deeper than it, up to the next line that is not.
type Block struct {
	Line     Line
	Children []*Block
}

// BuildBlocks nests lines by indentation. The pass knows nothing about
// keywords. A dedent that lands between two enclosing levels attaches the
// line to the innermost block indented less than it.
func BuildBlocks(lines []Line) []*Block {
	q := deque.NewDeque()
	for _, l := range lines {
		q.PushBack(l)
	}
	return build(q, -1)
}

// build consumes lines from the front of q while they are indented deeper
// than parent.
func build(q deque.Deque, parent int) []*Block {
	var blocks []*Block
	for !q.Empty() {
		line := q.Front().(Line)
		if line.Indent <= parent {
			break
		}
		q.PopFront()
		b := &Block{Line: line}
		b.Children = build(q, line.Indent)
		blocks = append(blocks, b)
	}
	return blocks
}

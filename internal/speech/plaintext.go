package speech

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText strips markdown formatting so the text can be spoken. Code
// blocks and HTML are dropped, link and emphasis text is kept.
func PlainText(markdown string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var w plainWriter
	w.walk(doc, reader.Source())

	return strings.Join(strings.Fields(string(w.buf)), " ")
}

type plainWriter struct {
	buf []byte
}

func (w *plainWriter) walk(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
		return

	case *ast.Text:
		w.buf = append(w.buf, n.Segment.Value(source)...)
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.buf = append(w.buf, ' ')
		}
		return

	case *ast.String:
		w.buf = append(w.buf, n.Value...)
		return

	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		w.children(n, source)
		w.endSentence()
		return
	}

	w.children(node, source)
}

func (w *plainWriter) children(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c, source)
	}
}

// endSentence terminates a block with a full stop unless it already ends in
// punctuation, so block boundaries become audible pauses.
func (w *plainWriter) endSentence() {
	for len(w.buf) > 0 && w.buf[len(w.buf)-1] == ' ' {
		w.buf = w.buf[:len(w.buf)-1]
	}
	if len(w.buf) == 0 {
		return
	}
	switch w.buf[len(w.buf)-1] {
	case '.', '!', '?', ':', ';':
	default:
		w.buf = append(w.buf, '.')
	}
	w.buf = append(w.buf, ' ')
}

package markdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor"
)

// Extractor drops Markdown syntax and keeps the readable text, one block per paragraph.
type Extractor struct {
	storage ports.ObjectStorage
	md      goldmark.Markdown
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{
		storage: storage,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	raw, err := extractor.ReadSource(ctx, e.storage, doc)
	if err != nil {
		return "", err
	}
	return e.plainText(raw), nil
}

func (e *Extractor) plainText(source []byte) string {
	root := e.md.Parser().Parse(text.NewReader(source))

	var out bytes.Buffer
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock && out.Len() > 0 {
				out.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Text:
			out.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				out.WriteByte(' ')
			}
		case *ast.String:
			out.Write(n.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				out.Write(segment.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	collapsed := strings.Split(out.String(), "\n\n")
	blocks := make([]string, 0, len(collapsed))
	for _, block := range collapsed {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

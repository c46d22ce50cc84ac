package skills

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is an entry of a skill's outline
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline returns the markdown headings of the skill body in document order
func Outline(skill *Skill) []Heading {
	source := []byte(skill.Body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	headings := []Heading{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, Heading{
				Level: h.Level,
				Text:  strings.TrimSpace(inlineText(h, source)),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return headings
}

// inlineText concatenates the text segments below n
func inlineText(n ast.Node, source []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(inlineText(c, source))
		}
	}
	return buf.String()
}

// RenderHTML renders the skill body as HTML
func RenderHTML(skill *Skill) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(skill.Body), &buf); err != nil {
		return "", errors.Wrapf(err, "failed to render skill '%s'", skill.Name)
	}
	return buf.String(), nil
}

// Package html parses markup into dom trees using golang.org/x/net/html
// as the underlying parser implementation.
package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ajmills/ghostdom/dom"
)

// Parse reads an HTML document and builds a dom.Document from it.
func Parse(r io.Reader) (*dom.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := dom.NewDocument()
	convertChildren(doc, doc.AsNode(), root)
	return doc, nil
}

// ParseString parses an HTML document from a string.
func ParseString(markup string) (*dom.Document, error) {
	return Parse(strings.NewReader(markup))
}

// convertChildren copies src's children into the dom tree under parent.
func convertChildren(doc *dom.Document, parent *dom.Node, src *html.Node) {
	for child := src.FirstChild; child != nil; child = child.NextSibling {
		if converted := convert(doc, child); converted != nil {
			parent.AppendChild(converted)
			convertChildren(doc, converted, child)
		}
	}
}

func convert(doc *dom.Document, n *html.Node) *dom.Node {
	switch n.Type {
	case html.ElementNode:
		el := doc.CreateElement(n.Data)
		for _, attr := range n.Attr {
			el.SetAttribute(attr.Key, attr.Val)
		}
		return el.AsNode()
	case html.TextNode:
		return doc.CreateTextNode(n.Data)
	case html.CommentNode:
		return doc.CreateComment(n.Data)
	}
	// Doctype and error nodes carry nothing the event core consumes.
	return nil
}

// ScriptContents returns the text of every <script> element without a src
// attribute, in document order, for the executor to run.
func ScriptContents(doc *dom.Document) []string {
	var scripts []string
	for _, el := range doc.GetElementsByTagName(atom.Script.String()) {
		if el.HasAttribute("src") {
			continue
		}
		scripts = append(scripts, el.AsNode().TextContent())
	}
	return scripts
}

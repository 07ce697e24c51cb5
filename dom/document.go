package dom

import "strings"

// Document is the root of a DOM tree.
type Document struct {
	node *Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.node = newNode(DocumentNode, "#document", d)
	return d
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return d.node
}

// DocumentElement returns the root element (html), or nil.
func (d *Document) DocumentElement() *Element {
	for child := d.node.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// Body returns the body element, or nil.
func (d *Document) Body() *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for child := root.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && child.elementData.tagName == "BODY" {
			return (*Element)(child)
		}
	}
	return nil
}

// CreateElement creates a new element owned by this document.
func (d *Document) CreateElement(tagName string) *Element {
	n := newNode(ElementNode, strings.ToUpper(tagName), d)
	n.elementData = &elementData{
		tagName:    strings.ToUpper(tagName),
		attributes: make(map[string]string),
	}
	return (*Element)(n)
}

// CreateTextNode creates a new text node owned by this document.
func (d *Document) CreateTextNode(text string) *Node {
	n := newNode(TextNode, "#text", d)
	n.nodeValue = text
	return n
}

// CreateComment creates a new comment node owned by this document.
func (d *Document) CreateComment(text string) *Node {
	n := newNode(CommentNode, "#comment", d)
	n.nodeValue = text
	return n
}

// Append appends elements or nodes to the document root.
func (d *Document) Append(children ...interface{}) {
	for _, item := range children {
		switch v := item.(type) {
		case *Node:
			d.node.AppendChild(v)
		case *Element:
			d.node.AppendChild(v.AsNode())
		}
	}
}

// GetElementById returns the element with the given id attribute, or nil.
func (d *Document) GetElementById(id string) *Element {
	if id == "" {
		return nil
	}
	return findElementById(d.node, id)
}

func findElementById(node *Node, id string) *Element {
	for child := node.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			el := (*Element)(child)
			if el.Id() == id {
				return el
			}
		}
		if found := findElementById(child, id); found != nil {
			return found
		}
	}
	return nil
}

// GetElementsByTagName returns all descendant elements with the given tag
// name in document order. "*" matches every element.
func (d *Document) GetElementsByTagName(tagName string) []*Element {
	return collectByTagName(d.node, strings.ToUpper(tagName))
}

func collectByTagName(node *Node, tagName string) []*Element {
	var out []*Element
	for child := node.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			if tagName == "*" || child.elementData.tagName == tagName {
				out = append(out, (*Element)(child))
			}
		}
		out = append(out, collectByTagName(child, tagName)...)
	}
	return out
}

// Package dom provides the node tree the event dispatcher propagates
// over: parent/child/sibling links, document and element constructors,
// and shadow roots with their host hook. Layout, CSSOM, and
// element-specific behavior live elsewhere; this package is deliberately
// just the traversal surface.
package dom

import (
	"strings"

	"github.com/ajmills/ghostdom/event"
)

// Node is a node in the DOM tree. Element and Document views convert to
// and from Node; type-specific data hangs off the relevant field.
type Node struct {
	nodeType  NodeType
	nodeName  string
	nodeValue string
	ownerDoc  *Document

	parentNode  *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	elementData *elementData
	shadowData  *shadowData

	listeners event.Listeners
}

// elementData holds data specific to Element nodes.
type elementData struct {
	tagName    string
	attributes map[string]string
	attrOrder  []string
	shadow     *ShadowRoot
}

func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node: the uppercase tag name for
// elements, "#text" for text nodes, "#document" for documents.
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the text content of text and comment nodes, and ""
// for everything else.
func (n *Node) NodeValue() string {
	return n.nodeValue
}

// SetNodeValue sets the value of text and comment nodes. No-op otherwise.
func (n *Node) SetNodeValue(value string) {
	if n.nodeType == TextNode || n.nodeType == CommentNode {
		n.nodeValue = value
	}
}

// OwnerDocument returns the Document that owns this node, nil for
// Document nodes themselves.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node, or nil.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// NextSibling returns the next sibling node, or nil.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// PrevSibling returns the previous sibling node, or nil.
func (n *Node) PrevSibling() *Node {
	return n.prevSibling
}

// AppendChild appends child as the last child of n, detaching it from any
// previous parent first. Returns the appended child.
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil || child == n {
		return child
	}
	if child.parentNode != nil {
		child.parentNode.RemoveChild(child)
	}
	child.parentNode = n
	child.prevSibling = n.lastChild
	if n.lastChild != nil {
		n.lastChild.nextSibling = child
	} else {
		n.firstChild = child
	}
	n.lastChild = child
	return child
}

// InsertBefore inserts child before ref among n's children. A nil ref
// appends.
func (n *Node) InsertBefore(child, ref *Node) *Node {
	if ref == nil {
		return n.AppendChild(child)
	}
	if child == nil || ref.parentNode != n {
		return child
	}
	if child.parentNode != nil {
		child.parentNode.RemoveChild(child)
	}
	child.parentNode = n
	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	ref.prevSibling = child
	return child
}

// RemoveChild detaches child from n. No-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	if child == nil || child.parentNode != n {
		return child
	}
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
	return child
}

// TextContent returns the concatenated text of the node and its
// descendants.
func (n *Node) TextContent() string {
	if n.nodeType == TextNode || n.nodeType == CommentNode {
		return n.nodeValue
	}
	var sb strings.Builder
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType != CommentNode {
			sb.WriteString(child.TextContent())
		}
	}
	return sb.String()
}

// AsElement returns the Element view of the node, or nil for non-elements.
func (n *Node) AsElement() *Element {
	if n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// EventListeners returns the node's listener list, making every Node an
// event.Target.
func (n *Node) EventListeners() *event.Listeners {
	return &n.listeners
}

// ParentTarget returns the parent node as an event target, or nil at the
// root, making every Node an event.TreeTarget.
func (n *Node) ParentTarget() event.Target {
	if n.parentNode == nil {
		return nil
	}
	return n.parentNode
}

// IsDocumentFragment reports whether the node is a document fragment
// (shadow roots included).
func (n *Node) IsDocumentFragment() bool {
	return n.nodeType == DocumentFragmentNode
}

// HostTarget returns the shadow host's node when this node is a shadow
// root, nil for ordinary (isolated) fragments.
func (n *Node) HostTarget() event.Target {
	if n.shadowData == nil || n.shadowData.host == nil {
		return nil
	}
	return n.shadowData.host.AsNode()
}

// ShadowClosed reports whether the node is a closed-mode shadow root.
func (n *Node) ShadowClosed() bool {
	return n.shadowData != nil && n.shadowData.mode == ShadowRootModeClosed
}

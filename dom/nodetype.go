package dom

// NodeType identifies the kind of a Node, using the DOM numeric values.
type NodeType int

const (
	ElementNode          NodeType = 1
	TextNode             NodeType = 3
	CommentNode          NodeType = 8
	DocumentNode         NodeType = 9
	DocumentFragmentNode NodeType = 11
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case DocumentFragmentNode:
		return "document-fragment"
	}
	return "unknown"
}

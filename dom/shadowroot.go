package dom

// ShadowRootMode indicates whether a shadow root is open or closed.
type ShadowRootMode string

const (
	// ShadowRootModeOpen exposes the root via Element.ShadowRoot.
	ShadowRootModeOpen ShadowRootMode = "open"
	// ShadowRootModeClosed hides the root from outside observers; events
	// still propagate through it, but composedPath seen from outside is
	// truncated at the host.
	ShadowRootModeClosed ShadowRootMode = "closed"
)

// shadowData marks a DocumentFragment node as a shadow root and links it
// back to its host.
type shadowData struct {
	mode ShadowRootMode
	host *Element
}

// ShadowRoot is the root of a shadow tree: a DocumentFragment node with a
// mode and a host element. It has no parent; event propagation crosses
// from it to the host.
type ShadowRoot struct {
	node *Node
}

func newShadowRoot(host *Element, mode ShadowRootMode) *ShadowRoot {
	node := newNode(DocumentFragmentNode, "#document-fragment", host.AsNode().ownerDoc)
	node.shadowData = &shadowData{mode: mode, host: host}
	return &ShadowRoot{node: node}
}

// NewFragment creates a plain document fragment with no host; events
// dispatched inside it never leave it.
func NewFragment(ownerDoc *Document) *Node {
	return newNode(DocumentFragmentNode, "#document-fragment", ownerDoc)
}

// AsNode returns the underlying Node.
func (sr *ShadowRoot) AsNode() *Node {
	return sr.node
}

// Mode returns "open" or "closed".
func (sr *ShadowRoot) Mode() ShadowRootMode {
	return sr.node.shadowData.mode
}

// Host returns the element hosting this shadow root.
func (sr *ShadowRoot) Host() *Element {
	return sr.node.shadowData.host
}

// AppendChild appends a node to the shadow tree.
func (sr *ShadowRoot) AppendChild(child *Node) *Node {
	return sr.node.AppendChild(child)
}

package dom

// Element is the element view of a Node.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the uppercase tag name.
func (e *Element) TagName() string {
	return e.elementData.tagName
}

// Id returns the element's id attribute.
func (e *Element) Id() string {
	return e.elementData.attributes["id"]
}

// GetAttribute returns the attribute value, or "".
func (e *Element) GetAttribute(name string) string {
	return e.elementData.attributes[name]
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.elementData.attributes[name]
	return ok
}

// SetAttribute sets an attribute, preserving first-set order.
func (e *Element) SetAttribute(name, value string) {
	if _, ok := e.elementData.attributes[name]; !ok {
		e.elementData.attrOrder = append(e.elementData.attrOrder, name)
	}
	e.elementData.attributes[name] = value
}

// RemoveAttribute removes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	if _, ok := e.elementData.attributes[name]; !ok {
		return
	}
	delete(e.elementData.attributes, name)
	for i, n := range e.elementData.attrOrder {
		if n == name {
			e.elementData.attrOrder = append(e.elementData.attrOrder[:i], e.elementData.attrOrder[i+1:]...)
			break
		}
	}
}

// AttributeNames returns attribute names in first-set order.
func (e *Element) AttributeNames() []string {
	return append([]string(nil), e.elementData.attrOrder...)
}

// AttachShadow attaches a shadow root to the element and returns it.
// Attaching twice returns the existing root.
func (e *Element) AttachShadow(mode ShadowRootMode) *ShadowRoot {
	if e.elementData.shadow != nil {
		return e.elementData.shadow
	}
	sr := newShadowRoot(e, mode)
	e.elementData.shadow = sr
	return sr
}

// ShadowRoot returns the element's shadow root if one is attached and
// open; closed roots are hidden, as from script.
func (e *Element) ShadowRoot() *ShadowRoot {
	sr := e.elementData.shadow
	if sr == nil || sr.Mode() == ShadowRootModeClosed {
		return nil
	}
	return sr
}

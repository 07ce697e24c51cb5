package event

// buildPath walks from the dispatch target up to the root, producing the
// propagation path ordered target-first. It appends the synthetic window
// root when the walk ends at a parent-less non-fragment node, and crosses
// shadow boundaries by continuing at the fragment's host. hiddenBefore is
// the index of the first path entry visible from outside a closed shadow
// tree (0 when no closed boundary was crossed).
func buildPath(t Target, window Target) (path []Target, hiddenBefore int) {
	path = append(path, t)
	cur := t
	for {
		if tt, ok := cur.(TreeTarget); ok {
			if parent := tt.ParentTarget(); parent != nil {
				path = append(path, parent)
				cur = parent
				continue
			}
		}
		if frag, ok := cur.(FragmentTarget); ok && frag.IsDocumentFragment() {
			host := frag.HostTarget()
			if host == nil {
				// Isolated fragment: propagation ends here.
				return path, hiddenBefore
			}
			if frag.ShadowClosed() {
				hiddenBefore = len(path)
			}
			path = append(path, host)
			cur = host
			continue
		}
		if window != nil && cur != window {
			path = append(path, window)
		}
		return path, hiddenBefore
	}
}

package domain

// ViewState tracks which context tree nodes are expanded.
// All nodes start collapsed. It is not safe for concurrent use.
type ViewState struct {
	expanded map[NodePath]bool
}

// NewViewState returns a state with every node collapsed.
func NewViewState() *ViewState {
	return &ViewState{expanded: make(map[NodePath]bool)}
}

// IsExpanded reports whether p itself is expanded.
func (v *ViewState) IsExpanded(p NodePath) bool {
	return v.expanded[p]
}

// Expand expands p and every ancestor of p.
func (v *ViewState) Expand(p NodePath) {
	for {
		if p.Level() == LevelNone {
			return
		}
		v.expanded[p] = true
		parent, ok := p.Parent()
		if !ok {
			return
		}
		p = parent
	}
}

// Collapse collapses p only. Descendants keep their flags.
func (v *ViewState) Collapse(p NodePath) {
	delete(v.expanded, p)
}

// Toggle flips p and returns its new state.
func (v *ViewState) Toggle(p NodePath) bool {
	if v.expanded[p] {
		v.Collapse(p)
		return false
	}
	v.Expand(p)
	return true
}

// ExpandAll expands every group node in t.
func (v *ViewState) ExpandAll(t ContextTree) {
	for _, p := range t.Paths() {
		v.expanded[p] = true
	}
}

// Reset collapses everything, as when a new agent code is loaded.
func (v *ViewState) Reset() {
	v.expanded = make(map[NodePath]bool)
}

// IsVisible reports whether every ancestor of p is expanded.
func (v *ViewState) IsVisible(p NodePath) bool {
	for {
		parent, ok := p.Parent()
		if !ok {
			return true
		}
		if !v.expanded[parent] {
			return false
		}
		p = parent
	}
}

// Visible returns the group nodes of t that are currently shown, in display order.
func (v *ViewState) Visible(t ContextTree) []NodePath {
	var out []NodePath
	for _, p := range t.Paths() {
		if v.IsVisible(p) {
			out = append(out, p)
		}
	}
	return out
}

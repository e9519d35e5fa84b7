package discovery

// IDSet is a set of event ids toggled by the user. The zero value is an
// empty set. It is owned by a single screen and not safe for concurrent use.
type IDSet struct {
	ids map[string]struct{}
}

// Toggle flips membership of id and returns the new membership.
func (s *IDSet) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *IDSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *IDSet) Len() int { return len(s.ids) }

// IDs returns the members in no particular order.
func (s *IDSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// SelectionState is what one screen remembers between renders. It starts
// empty on mount and is dropped when the screen goes away.
type SelectionState struct {
	Query      string
	Selector   Selector
	Bookmarked IDSet
	Checked    IDSet
}

// NewSelectionState returns a state with the given initial selector.
func NewSelectionState(initial Selector) *SelectionState {
	return &SelectionState{Selector: initial}
}

// PressChip applies a chip press to the current selector.
func (s *SelectionState) PressChip(pressed Selector) Selector {
	s.Selector = s.Selector.Toggle(pressed)
	return s.Selector
}

func (s *SelectionState) ToggleBookmark(id string) bool { return s.Bookmarked.Toggle(id) }

func (s *SelectionState) ToggleChecked(id string) bool { return s.Checked.Toggle(id) }

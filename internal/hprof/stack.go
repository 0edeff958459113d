package hprof

type (
	entry struct {
		node    *Node
		startNS uint64
		id      uint64
	}

	// frameStack holds the regions currently open in a frame. The node at
	// position i is always a child of the node at position i-1, or of the
	// frame root for i = 0.
	frameStack struct {
		entries []entry
		lastID  uint64
	}
)

func (s *frameStack) push(n *Node, startNS uint64) uint64 {
	s.lastID++
	s.entries = append(s.entries, entry{node: n, startNS: startNS, id: s.lastID})
	return s.lastID
}

func (s *frameStack) pop() (entry, bool) {
	e, ok := s.top()
	if !ok {
		return entry{}, false
	}
	s.entries[len(s.entries)-1] = entry{}
	s.entries = s.entries[:len(s.entries)-1]
	return e, true
}

func (s *frameStack) top() (entry, bool) {
	if len(s.entries) == 0 {
		return entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// find returns the position of the entry with the given id, or -1.
func (s *frameStack) find(id uint64) int {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].id == id {
			return i
		}
	}
	return -1
}

func (s *frameStack) len() int {
	return len(s.entries)
}

// reset drops every open entry. Entry ids keep increasing so that guards
// from a discarded frame never match a new entry.
func (s *frameStack) reset() {
	for i := range s.entries {
		s.entries[i] = entry{}
	}
	s.entries = s.entries[:0]
}

package hprof

// Node is the time accumulated by one region at one position of the tree
// during a frame. A region entered several times under the same parent in one
// frame accumulates into the same node.
type Node struct {
	name       string
	durationNS uint64
	calls      uint32
	children   []*Node
	index      map[string]int
}

func newNode(name string) *Node {
	return &Node{name: name}
}

func (n *Node) Name() string {
	return n.name
}

// DurationNS returns the time spent in the region, nested regions included.
func (n *Node) DurationNS() uint64 {
	return n.durationNS
}

// Calls returns how many times the region was entered at this position.
func (n *Node) Calls() uint32 {
	return n.calls
}

// ExclusiveNS returns the time spent in the region minus the time spent in
// its children.
func (n *Node) ExclusiveNS() uint64 {
	var inChildren uint64
	for _, c := range n.children {
		inChildren += c.durationNS
	}
	return elapsed(inChildren, n.durationNS)
}

// Children returns the child nodes in order of first entry.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Child looks up a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	i, ok := n.index[name]
	if !ok {
		return nil, false
	}
	return n.children[i], true
}

// Walk visits n and its descendants depth first, children in order, with the
// depth of each node relative to n.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// child returns the child named name, creating and appending it on first use.
func (n *Node) child(name string) *Node {
	if i, ok := n.index[name]; ok {
		return n.children[i]
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	c := newNode(name)
	n.index[name] = len(n.children)
	n.children = append(n.children, c)
	return c
}

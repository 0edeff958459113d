package hprof

import (
	"testing"

	"github.com/getsentry/hprof/internal/testutil"
)

func TestNodeChildLookupOrCreate(t *testing.T) {
	root := newNode("root")
	b := root.child("b")
	a := root.child("a")
	if root.child("b") != b || root.child("a") != a {
		t.Fatal("expected existing children to be reused")
	}
	// names are compared exactly
	root.child("B")

	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	if diff := testutil.Diff(names, []string{"b", "a", "B"}); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if _, ok := root.Child("c"); ok {
		t.Fatal("expected Child not to create nodes")
	}
}

func TestNodeExclusiveNS(t *testing.T) {
	tests := []struct {
		name     string
		duration uint64
		children []uint64
		want     uint64
	}{
		{name: "leaf", duration: 10, want: 10},
		{name: "with children", duration: 10, children: []uint64{3, 4}, want: 3},
		{name: "children longer than parent", duration: 10, children: []uint64{8, 4}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNode("n")
			n.durationNS = tt.duration
			for i, d := range tt.children {
				n.child(string(rune('a' + i))).durationNS = d
			}
			if got := n.ExclusiveNS(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNodeWalk(t *testing.T) {
	root := newNode("root")
	physics := root.child("physics")
	physics.child("collision")
	root.child("render")

	type visit struct {
		Name  string
		Depth int
	}
	var got []visit
	root.Walk(func(n *Node, depth int) {
		got = append(got, visit{n.Name(), depth})
	})
	want := []visit{{"root", 0}, {"physics", 1}, {"collision", 2}, {"render", 1}}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestNodeChildrenIsACopy(t *testing.T) {
	root := newNode("root")
	root.child("a")
	children := root.Children()
	children[0] = nil
	if c, _ := root.Child("a"); c == nil {
		t.Fatal("expected the tree to be unaffected")
	}
}

package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
)

// testNode is a synthetic tree used to exercise the traversal engine
// without depending on a real parsed PHP tree.
type testNode struct {
	kind     tree.Kind
	name     string
	children []tree.Node
}

func (n *testNode) Kind() tree.Kind      { return n.kind }
func (n *testNode) Children() []tree.Node { return n.children }

func node(name string, children ...*testNode) *testNode {
	cs := make([]tree.Node, len(children))
	for i, c := range children {
		cs[i] = c
	}
	return &testNode{kind: tree.Kind(name), name: name, children: cs}
}

// root
//   a
//     a1
//     a2
//   b

func sampleTree() *testNode {
	return node("root",
		node("a", node("a1"), node("a2")),
		node("b"),
	)
}

type recordingVisitor struct {
	tree.BaseVisitor
	preorder  []string
	postorder []string
	spines    map[string][]string
}

func newRecordingVisitor() *recordingVisitor {
	return &recordingVisitor{spines: map[string][]string{}}
}

func (r *recordingVisitor) Preorder(n tree.Node, spine []tree.Node) bool {
	name := n.(*testNode).name
	r.preorder = append(r.preorder, name)
	r.spines[name] = spineNames(spine)
	return true
}

func (r *recordingVisitor) Postorder(n tree.Node, _ []tree.Node) {
	r.postorder = append(r.postorder, n.(*testNode).name)
}

func spineNames(spine []tree.Node) []string {
	out := make([]string, len(spine))
	for i, s := range spine {
		out[i] = s.(*testNode).name
	}
	return out
}

func TestTraverseOrderAndSpine(t *testing.T) {
	root := sampleTree()
	v := newRecordingVisitor()
	tree.Traverse(root, v)

	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, v.preorder)
	assert.Equal(t, []string{"a1", "a2", "a", "b", "root"}, v.postorder)

	assert.Equal(t, []string{}, v.spines["root"])
	assert.Equal(t, []string{"root"}, v.spines["a"])
	assert.Equal(t, []string{"root", "a"}, v.spines["a1"])
	assert.Equal(t, []string{"root"}, v.spines["b"])
}

type haltingVisitor struct {
	tree.BaseVisitor
	haltAt   string
	visited  []string
}

func (h *haltingVisitor) Preorder(n tree.Node, _ []tree.Node) bool {
	name := n.(*testNode).name
	h.visited = append(h.visited, name)
	if name == h.haltAt {
		h.Halt = true
	}
	return true
}

func TestHaltLatency(t *testing.T) {
	root := sampleTree()
	v := &haltingVisitor{haltAt: "a1"}
	tree.Traverse(root, v)

	// a1's siblings (a2) and b must never be visited once halt was set.
	assert.Equal(t, []string{"root", "a", "a1"}, v.visited)
}

func TestPreorderFalseSkipsSubtreeButFiresPostorder(t *testing.T) {
	root := sampleTree()
	v := &skipVisitor{skip: "a"}
	tree.Traverse(root, v)

	assert.Equal(t, []string{"root", "a", "b"}, v.preorderSeen)
	assert.Equal(t, []string{"a", "b", "root"}, v.postorderSeen)
}

type skipVisitor struct {
	tree.BaseVisitor
	skip          string
	preorderSeen  []string
	postorderSeen []string
}

func (s *skipVisitor) Preorder(n tree.Node, _ []tree.Node) bool {
	name := n.(*testNode).name
	s.preorderSeen = append(s.preorderSeen, name)
	return name != s.skip
}

func (s *skipVisitor) Postorder(n tree.Node, _ []tree.Node) {
	s.postorderSeen = append(s.postorderSeen, n.(*testNode).name)
}

func TestFilterFindCount(t *testing.T) {
	root := sampleTree()
	isLeaf := func(n tree.Node) bool { return len(n.Children()) == 0 }

	leaves := tree.Filter(root, isLeaf)
	require.Len(t, leaves, 3) // a1, a2, b

	found := tree.Find(root, func(n tree.Node) bool { return n.(*testNode).name == "a2" })
	require.NotNil(t, found)
	assert.Equal(t, "a2", found.(*testNode).name)

	assert.Equal(t, 3, tree.Count(root, isLeaf))
}

func TestAncestor(t *testing.T) {
	root := sampleTree()
	a1 := root.children[0].(*testNode).children[0]

	anc := tree.Ancestor(root, a1, func(n tree.Node) bool { return n.(*testNode).name == "a" })
	require.NotNil(t, anc)
	assert.Equal(t, "a", anc.(*testNode).name)

	none := tree.Ancestor(root, a1, func(n tree.Node) bool { return n.(*testNode).name == "b" })
	assert.Nil(t, none)
}

func TestSiblings(t *testing.T) {
	root := sampleTree()
	a := root.children[0]
	b := root.children[1]

	assert.Nil(t, tree.PrevSibling(root, a))
	assert.Equal(t, b, tree.NextSibling(root, a))
	assert.Equal(t, a, tree.PrevSibling(root, b))
	assert.Nil(t, tree.NextSibling(root, b))
}

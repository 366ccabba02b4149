package phrase_test

import (
	"testing"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/stretchr/testify/require"
	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
)

func parse(t *testing.T, src string) ast.Vertex {
	t.Helper()
	var parseErrors []*errors.Error
	v := version.Version{Major: 8, Minor: 1}
	root, err := parser.Parse([]byte(src), conf.Config{
		Version:          &v,
		ErrorHandlerFunc: func(e *errors.Error) { parseErrors = append(parseErrors, e) },
	})
	require.NoError(t, err)
	require.Empty(t, parseErrors)
	return root
}

func TestFromWrapsRootAndNamespace(t *testing.T) {
	src := `<?php
namespace App;

class Greeter {
	public function hello($name) {
		return "hi " . $name;
	}
}
`
	root := parse(t, src)
	n := phrase.From(root)
	require.NotNil(t, n)
	require.Equal(t, phrase.KindRoot, n.Kind())
	require.NotEmpty(t, n.Children())
}

func TestFindClassAndMethodByKind(t *testing.T) {
	src := `<?php
class Foo {
	public function bar() {}
}
`
	root := phrase.From(parse(t, src))

	class := tree.Find(root, func(n tree.Node) bool { return n.Kind() == phrase.KindClass })
	require.NotNil(t, class)

	method := tree.Find(root, func(n tree.Node) bool { return n.Kind() == phrase.KindClassMethod })
	require.NotNil(t, method)

	owner := tree.Ancestor(root, method, func(n tree.Node) bool { return n.Kind() == phrase.KindClass })
	require.Equal(t, class, owner, "method must resolve the enclosing class as its nearest matching ancestor")
}

func TestVertexEscapeHatchReturnsUnderlyingNode(t *testing.T) {
	src := `<?php $x = 1;`
	root := phrase.From(parse(t, src))

	assign := tree.Find(root, func(n tree.Node) bool { return n.Kind() == phrase.KindAssign })
	require.NotNil(t, assign)

	pn, ok := assign.(*phrase.Node)
	require.True(t, ok)
	require.NotNil(t, pn.Vertex())
	require.IsType(t, &ast.ExprAssign{}, pn.Vertex())
}

func TestOffsetsAreMonotonicWithinParent(t *testing.T) {
	src := `<?php
function f() {
	return 1;
}
`
	root := phrase.From(parse(t, src))
	fn := tree.Find(root, func(n tree.Node) bool { return n.Kind() == phrase.KindFunction })
	require.NotNil(t, fn)

	pn := fn.(*phrase.Node)
	for _, c := range pn.Children() {
		cn := c.(*phrase.Node)
		if cn.End() == 0 {
			continue // child carries no position metadata of its own
		}
		require.GreaterOrEqual(t, cn.Offset(), pn.Offset())
		require.LessOrEqual(t, cn.End(), pn.End())
	}
}

func TestBinaryNodeFallsBackToBinaryKind(t *testing.T) {
	src := `<?php $a + $b;`
	root := phrase.From(parse(t, src))
	bin := tree.Find(root, func(n tree.Node) bool { return n.Kind() == phrase.KindBinary })
	require.NotNil(t, bin, "binary expression should resolve via the GetLeft/GetRight fallback")
}

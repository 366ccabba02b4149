package typeinfer_test

import (
	"testing"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"
	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
	"github.com/whit3rabbit/go-phpintel/internal/typeinfer"
	"github.com/whit3rabbit/go-phpintel/internal/vartable"
)

func parseExpr(t *testing.T, phpStmt string) tree.Node {
	t.Helper()
	v := version.Version{Major: 8, Minor: 1}
	var parseErrors []*errors.Error
	root, err := parser.Parse([]byte("<?php "+phpStmt), conf.Config{
		Version:          &v,
		ErrorHandlerFunc: func(e *errors.Error) { parseErrors = append(parseErrors, e) },
	})
	require.NoError(t, err)
	require.Empty(t, parseErrors)

	n := phrase.From(root)
	expression := tree.Find(n, func(n tree.Node) bool {
		return n.Kind() == "StmtExpression"
	})
	require.NotNil(t, expression)
	return expression.(*phrase.Node).Children()[0]
}

func freshContext() *typeinfer.Context {
	return &typeinfer.Context{
		Resolver: resolve.New(),
		Store:    symbol.NewStore(),
		Vars:     vartable.New(),
	}
}

func TestExprLiterals(t *testing.T) {
	ctx := freshContext()
	assert.Equal(t, "string", typeinfer.Expr(parseExpr(t, `"hello";`), ctx))
	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `42;`), ctx))
	assert.Equal(t, "float", typeinfer.Expr(parseExpr(t, `4.2;`), ctx))
	assert.Equal(t, "bool", typeinfer.Expr(parseExpr(t, `true;`), ctx))
	assert.Equal(t, "null", typeinfer.Expr(parseExpr(t, `null;`), ctx))
	assert.Equal(t, "array", typeinfer.Expr(parseExpr(t, `[1, 2];`), ctx))
}

func TestExprSimpleVariable(t *testing.T) {
	ctx := freshContext()
	ctx.Vars.SetType("$x", "int")
	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `$x;`), ctx))
}

func TestExprThisSubstitutesClassContext(t *testing.T) {
	ctx := freshContext()
	ctx.Resolver.PushClass(`\App\Foo`, "")
	assert.Equal(t, `\App\Foo`, typeinfer.Expr(parseExpr(t, `$this;`), ctx))
}

func TestExprNewResolvesClassName(t *testing.T) {
	ctx := freshContext()
	ctx.Resolver.EnterNamespace("App")
	assert.Equal(t, `\App\Greeter`, typeinfer.Expr(parseExpr(t, `new Greeter();`), ctx))
}

func TestExprNewFullyQualified(t *testing.T) {
	ctx := freshContext()
	ctx.Resolver.EnterNamespace("App")
	assert.Equal(t, `\Other\Thing`, typeinfer.Expr(parseExpr(t, `new \Other\Thing();`), ctx))
}

func TestExprTernaryUnionsBranches(t *testing.T) {
	ctx := freshContext()
	assert.Equal(t, "int|string", typeinfer.Expr(parseExpr(t, `true ? 1 : "s";`), ctx))
}

func TestExprShortTernaryUnionsCondAndElse(t *testing.T) {
	ctx := freshContext()
	assert.Equal(t, "int|string", typeinfer.Expr(parseExpr(t, `1 ?: "s";`), ctx))
}

func TestExprSubscriptOfArrayOfType(t *testing.T) {
	ctx := freshContext()
	ctx.Vars.SetType("$items", "int[]")
	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `$items[0];`), ctx))
}

func TestExprSubscriptOfStringYieldsString(t *testing.T) {
	ctx := freshContext()
	ctx.Vars.SetType("$s", "string")
	assert.Equal(t, "string", typeinfer.Expr(parseExpr(t, `$s[0];`), ctx))
}

func TestExprFunctionCallUsesBuiltinTable(t *testing.T) {
	ctx := freshContext()
	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `intval($x);`), ctx))
	assert.Equal(t, "string", typeinfer.Expr(parseExpr(t, `sprintf("%d", 1);`), ctx))
}

func TestExprFunctionCallFallsBackToRootNamespace(t *testing.T) {
	ctx := freshContext()
	ctx.Resolver.EnterNamespace("App")
	ctx.Store.Add(&symbol.Symbol{Kind: symbol.KindFunction, Name: "helper", FQN: `\helper`, Type: "string"})

	assert.Equal(t, "string", typeinfer.Expr(parseExpr(t, `helper();`), ctx))
}

func TestExprPropertyFetchLooksUpMemberChain(t *testing.T) {
	ctx := freshContext()
	ctx.Store.Add(&symbol.Symbol{
		Kind: symbol.KindClass, Name: "Foo", FQN: `\App\Foo`, URI: "a",
		Children: []*symbol.Symbol{
			{Kind: symbol.KindProperty, Name: "total", FQN: `\App\Foo::$total`, Type: "int"},
		},
	})
	ctx.Vars.SetType("$f", `\App\Foo`)

	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `$f->total;`), ctx))
}

func TestExprMethodCallMergesReturnTypes(t *testing.T) {
	ctx := freshContext()
	ctx.Store.Add(&symbol.Symbol{
		Kind: symbol.KindClass, Name: "Foo", FQN: `\App\Foo`, URI: "a",
		Children: []*symbol.Symbol{
			{Kind: symbol.KindMethod, Name: "get", FQN: `\App\Foo::get`, Type: "int"},
		},
	})
	ctx.Vars.SetType("$f", `\App\Foo`)

	assert.Equal(t, "int", typeinfer.Expr(parseExpr(t, `$f->get();`), ctx))
}

func TestMemberNameIdentifierHasNoOwnType(t *testing.T) {
	vertex := &ast.Identifier{Value: []byte("foo")}
	pn := phrase.From(vertex)
	ctx := freshContext()
	assert.Equal(t, "", typeinfer.Expr(pn, ctx))
}

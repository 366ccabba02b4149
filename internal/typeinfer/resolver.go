package typeinfer

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
	"github.com/whit3rabbit/go-phpintel/internal/vartable"
)

// Context bundles the ambient state an expression-type computation
// reads: the active name resolver, the workspace symbol store, and the
// live variable table. It never mutates any of the three — Expr is a
// pure function of a node plus this context.
type Context struct {
	Resolver *resolve.Resolver
	Store    *symbol.Store
	Vars     *vartable.Table
}

// Expr returns the inferred type string of expression node n. Nodes it
// does not recognize (including nil) yield "" (unknown), per §3's
// canonicalization rule.
func Expr(n tree.Node, ctx *Context) string {
	pn, ok := n.(*phrase.Node)
	if !ok || pn == nil {
		return ""
	}

	switch pn.Kind() {
	case phrase.KindScalarString, phrase.KindEncapsed:
		return "string"
	case phrase.KindScalarLnumber:
		return "int"
	case phrase.KindScalarDnumber:
		return "float"
	case phrase.KindArray:
		return "array"
	case phrase.KindClosure, phrase.KindArrowFunction:
		return "callable"
	case phrase.KindConstFetch:
		return constFetchType(pn, ctx)

	case phrase.KindAssign, phrase.KindAssignRef:
		if children := pn.Children(); len(children) >= 2 {
			return Expr(children[1], ctx)
		}
		return ""

	case phrase.KindVariable:
		return variableType(pn, ctx)

	case phrase.KindNew:
		return classDesignatorType(firstChild(pn), ctx)

	case phrase.KindName, phrase.KindNameRelative, phrase.KindNameFullyQual:
		return classDesignatorType(pn, ctx)

	case phrase.KindPropertyFetch, phrase.KindNullsafeFetch:
		return propertyFetchType(pn, ctx, false)
	case phrase.KindStaticProperty:
		return propertyFetchType(pn, ctx, true)
	case phrase.KindClassConstFetch:
		return classConstFetchType(pn, ctx)

	case phrase.KindMethodCall:
		return methodCallType(pn, ctx, false)
	case phrase.KindStaticCall:
		return methodCallType(pn, ctx, true)
	case phrase.KindFunctionCall:
		return functionCallType(pn, ctx)

	case phrase.KindArrayDimFetch:
		return subscriptType(pn, ctx)

	case phrase.KindTernary:
		return ternaryType(pn, ctx)

	case phrase.KindIdentifier:
		return "" // member name: textual identifier, no type of its own

	default:
		return ""
	}
}

func firstChild(n *phrase.Node) tree.Node {
	c := n.Children()
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

func constFetchType(pn *phrase.Node, ctx *Context) string {
	name := firstChild(pn)
	npn, ok := name.(*phrase.Node)
	if !ok {
		return ""
	}
	text, _, _ := phrase.NameText(npn.Vertex())
	switch strings.ToLower(text) {
	case "true", "false":
		return "bool"
	case "null":
		return "null"
	}
	fqn := resolveConstantName(text, ctx)
	if sym, ok := ctx.Store.Find(fqn, symbol.Mask(symbol.KindConstant)); ok {
		return sym.Type
	}
	return ""
}

// resolveConstantName applies constants' global-namespace-fallback rule
// (§4.E): if the namespace-qualified form is not declared, fall back to
// the root namespace.
func resolveConstantName(text string, ctx *Context) string {
	resolved := ctx.Resolver.ResolveQualifiedName(text, resolve.UseConstant)
	if _, ok := ctx.Store.Find(resolved, symbol.Mask(symbol.KindConstant)); ok || strings.Contains(text, `\`) {
		return resolved
	}
	root := `\` + text
	if _, ok := ctx.Store.Find(root, symbol.Mask(symbol.KindConstant)); ok {
		return root
	}
	return resolved
}

func variableType(pn *phrase.Node, ctx *Context) string {
	v, ok := pn.Vertex().(*ast.ExprVariable)
	if !ok {
		return ""
	}
	ident, ok := v.Name.(*ast.Identifier)
	if !ok {
		return "" // variable-variable ($$x): non-goal, best-effort unknown
	}
	name := "$" + string(ident.Value)
	return ctx.Vars.GetType(name, ctx.Resolver.ClassName())
}

// classDesignatorType resolves a class name occurring as a type
// position (after `new`, before `::`, in `instanceof`, in `catch`),
// substituting self/static/parent from the class context.
func classDesignatorType(n tree.Node, ctx *Context) string {
	pn, ok := n.(*phrase.Node)
	if !ok {
		return ""
	}
	// `new` wraps the designator one level deeper when it is itself a
	// Name phrase; non-Name designators (e.g. `new $class()`) are
	// dynamic and out of scope for static inference.
	text, relative, fq := phrase.NameText(pn.Vertex())
	if text == "" {
		return ""
	}
	switch {
	case fq:
		return `\` + text
	case relative:
		return ctx.Resolver.ResolveRelativeName(`namespace\` + text)
	}
	switch strings.ToLower(text) {
	case "self", "static":
		if cn := ctx.Resolver.ClassName(); cn != "" {
			return cn
		}
		return ""
	case "parent":
		return ctx.Resolver.ParentClassName()
	}
	return ctx.Resolver.ResolveQualifiedName(text, resolve.UseClass)
}

func propertyFetchType(pn *phrase.Node, ctx *Context, static bool) string {
	children := pn.Children()
	if len(children) < 2 {
		return ""
	}
	var propName string
	if static {
		propName = strings.TrimPrefix(memberText(children[1]), "$")
	} else {
		propName = memberText(children[1])
	}
	if propName == "" {
		return ""
	}

	var containerType string
	if static {
		containerType = classDesignatorType(children[0], ctx)
	} else {
		containerType = Expr(children[0], ctx)
	}

	required := symbol.Modifier(0)
	if static {
		required = symbol.ModStatic
	}
	var result string
	for _, atom := range Atoms(containerType) {
		if !IsClassAtom(atom) {
			continue
		}
		members := ctx.Store.LookupMembers(atom, propName, symbol.Mask(symbol.KindProperty), required, 0, symbol.FirstMatch)
		result = Union(result, mergeTypes(members))
	}
	return result
}

func classConstFetchType(pn *phrase.Node, ctx *Context) string {
	children := pn.Children()
	if len(children) < 2 {
		return ""
	}
	constName := memberText(children[1])
	containerType := classDesignatorType(children[0], ctx)
	if constName == "" || containerType == "" {
		return ""
	}
	members := ctx.Store.LookupMembers(containerType, constName, symbol.Mask(symbol.KindClassConstant), 0, 0, symbol.FirstMatch)
	return mergeTypes(members)
}

func methodCallType(pn *phrase.Node, ctx *Context, static bool) string {
	children := pn.Children()
	if len(children) < 2 {
		return ""
	}
	methodName := memberText(children[1])
	if methodName == "" {
		return ""
	}

	var result string
	if static {
		containerType := classDesignatorType(children[0], ctx)
		members := ctx.Store.LookupMembers(containerType, methodName, symbol.Mask(symbol.KindMethod), 0, 0, symbol.AllMatches)
		result = mergeTypes(members)
	} else {
		containerType := Expr(children[0], ctx)
		for _, atom := range Atoms(containerType) {
			if !IsClassAtom(atom) {
				continue
			}
			members := ctx.Store.LookupMembers(atom, methodName, symbol.Mask(symbol.KindMethod), 0, 0, symbol.FirstMatch)
			result = Union(result, mergeTypes(members))
		}
	}
	return result
}

// memberText returns the plain name of a property/method/const
// designator node: an Identifier's text, or a variable's "$name" form
// for dynamic property access via a simple variable.
func memberText(n tree.Node) string {
	pn, ok := n.(*phrase.Node)
	if !ok {
		return ""
	}
	switch v := pn.Vertex().(type) {
	case *ast.Identifier:
		return string(v.Value)
	case *ast.ExprVariable:
		if ident, ok := v.Name.(*ast.Identifier); ok {
			return "$" + string(ident.Value)
		}
	}
	return ""
}

func functionCallType(pn *phrase.Node, ctx *Context) string {
	children := pn.Children()
	if len(children) == 0 {
		return ""
	}
	namePn, ok := children[0].(*phrase.Node)
	if !ok {
		return ""
	}
	text, _, _ := phrase.NameText(namePn.Vertex())
	if text == "" {
		return "" // dynamic call target, e.g. $callback(...)
	}
	lower := strings.ToLower(text)

	if PassthroughElementFuncs[lower] && len(children) > 1 {
		if argType := firstArgElementType(children[1:], ctx); argType != "" {
			return ArrayOf(argType)
		}
	}
	fqn := ctx.Resolver.ResolveQualifiedName(text, resolve.UseFunction)
	sym, found := ctx.Store.Find(fqn, symbol.Mask(symbol.KindFunction))
	if !found && !strings.Contains(text, `\`) {
		sym, found = ctx.Store.Find(`\`+text, symbol.Mask(symbol.KindFunction))
	}
	if found && sym.Type != "" {
		return sym.Type
	}
	return Builtins[lower]
}

func firstArgElementType(args []tree.Node, ctx *Context) string {
	if len(args) == 0 {
		return ""
	}
	arg, ok := args[0].(*phrase.Node)
	if !ok || len(arg.Children()) == 0 {
		return ""
	}
	argExprType := Expr(arg.Children()[0], ctx)
	for _, atom := range Atoms(argExprType) {
		if el := ElementOf(atom); el != "" {
			return el
		}
	}
	return ""
}

func subscriptType(pn *phrase.Node, ctx *Context) string {
	children := pn.Children()
	if len(children) == 0 {
		return ""
	}
	baseType := Expr(children[0], ctx)
	var result string
	for _, atom := range Atoms(baseType) {
		switch {
		case atom == "string":
			result = Union(result, "string")
		case atom == "array":
			result = Union(result, "mixed")
		default:
			if el := ElementOf(atom); el != "" {
				result = Union(result, el)
			}
		}
	}
	return result
}

func ternaryType(pn *phrase.Node, ctx *Context) string {
	children := pn.Children()
	switch len(children) {
	case 2:
		// short ternary `a ?: c`: children are [cond, else]
		return Union(Expr(children[0], ctx), Expr(children[1], ctx))
	case 3:
		return Union(Expr(children[1], ctx), Expr(children[2], ctx))
	default:
		return ""
	}
}

// mergeTypes unions the declared Type of each symbol, deduplicating
// atoms (§4.H).
func mergeTypes(symbols []*symbol.Symbol) string {
	var result string
	for _, s := range symbols {
		result = Union(result, s.Type)
	}
	return result
}

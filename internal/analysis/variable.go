package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
	"github.com/whit3rabbit/go-phpintel/internal/typeinfer"
	"github.com/whit3rabbit/go-phpintel/internal/vartable"
)

// VariableVisitor drives a vartable.Table in step with scope and
// control-flow boundaries, reading expression types through
// internal/typeinfer as it goes. It is meant to run on the same
// traversal as a NamespaceVisitor sharing the same Resolver, composed
// via tree.NewMultiVisitor.
type VariableVisitor struct {
	Resolver *resolve.Resolver
	Store    *symbol.Store
	Vars     *vartable.Table

	hasHalt    bool
	haltOffset int
	halted     bool
}

// NewVariableVisitor returns a visitor over the given ambient state.
func NewVariableVisitor(r *resolve.Resolver, store *symbol.Store, vars *vartable.Table) *VariableVisitor {
	return &VariableVisitor{Resolver: r, Store: store, Vars: vars}
}

// HaltAtOffset configures the visitor to halt as soon as it reaches the
// innermost node containing offset: from then on it declines every
// Preorder and ignores every Postorder, leaving Vars as the live state
// at that point in the document. The enclosing traversal itself keeps
// running for any other visitors sharing it.
func (v *VariableVisitor) HaltAtOffset(offset int) {
	v.hasHalt = true
	v.haltOffset = offset
}

func (v *VariableVisitor) Halted() bool { return v.halted }

func (v *VariableVisitor) ctx() *typeinfer.Context {
	return &typeinfer.Context{Resolver: v.Resolver, Store: v.Store, Vars: v.Vars}
}

func (v *VariableVisitor) Preorder(n tree.Node, _ []tree.Node) bool {
	if v.halted {
		return false
	}
	pn, ok := n.(*phrase.Node)
	if !ok {
		return true
	}

	switch pn.Kind() {
	case phrase.KindClass, phrase.KindInterface, phrase.KindTrait:
		v.Vars.PushScope(nil)

	case phrase.KindClassMethod:
		cm, ok := pn.Vertex().(*ast.StmtClassMethod)
		v.Vars.PushScope(nil)
		if ok {
			v.bindParamVertices(cm.Params)
		}

	case phrase.KindFunction:
		fn, ok := pn.Vertex().(*ast.StmtFunction)
		v.Vars.PushScope(nil)
		if ok {
			v.bindParamVertices(fn.Params)
		}

	case phrase.KindClosure:
		cl, ok := pn.Vertex().(*ast.ExprClosure)
		var carry []string
		if ok {
			carry = closureUseNames(cl.Uses)
		}
		v.Vars.PushScope(carry)
		if ok {
			v.bindParamVertices(cl.Params)
		}

	case phrase.KindArrowFunction:
		af, ok := pn.Vertex().(*ast.ExprArrowFunction)
		// Arrow functions implicitly capture every outer variable by
		// value; this service does not enumerate "every currently
		// bound name" so only its own parameters are bound, a known
		// simplification over full arrow-function capture semantics.
		v.Vars.PushScope(nil)
		if ok {
			v.bindParamVertices(af.Params)
		}

	case phrase.KindForeach:
		v.bindForeach(pn)

	case phrase.KindCatch:
		v.bindCatch(pn)

	case phrase.KindIf:
		si, ok := pn.Vertex().(*ast.StmtIf)
		v.Vars.PushBranch()
		if ok {
			applyInstanceofNarrow(si.Cond, v.Resolver, v.Vars)
		}

	case phrase.KindElseIf:
		sei, ok := pn.Vertex().(*ast.StmtElseIf)
		v.Vars.PushBranch()
		if ok {
			applyInstanceofNarrow(sei.Cond, v.Resolver, v.Vars)
		}

	case phrase.KindElse, phrase.KindCase, phrase.KindDefault:
		v.Vars.PushBranch()
	}

	if v.hasHalt && v.isInnermostAtHaltOffset(pn) {
		v.halted = true
		return false
	}
	return true
}

// isInnermostAtHaltOffset reports whether pn contains the configured
// halt offset and none of its children do — i.e. pn is the deepest
// node covering that point in the source, the point at which §4.I
// calls for recording state and halting.
func (v *VariableVisitor) isInnermostAtHaltOffset(pn *phrase.Node) bool {
	if !pn.Contains(v.haltOffset) {
		return false
	}
	for _, c := range pn.Children() {
		if cp, ok := c.(*phrase.Node); ok && cp.Contains(v.haltOffset) {
			return false
		}
	}
	return true
}

func (v *VariableVisitor) Postorder(n tree.Node, _ []tree.Node) {
	if v.halted {
		return
	}
	pn, ok := n.(*phrase.Node)
	if !ok {
		return
	}

	switch pn.Kind() {
	case phrase.KindClass, phrase.KindInterface, phrase.KindTrait,
		phrase.KindClassMethod, phrase.KindFunction,
		phrase.KindClosure, phrase.KindArrowFunction:
		v.Vars.PopScope()

	case phrase.KindIf, phrase.KindSwitch:
		v.Vars.PruneBranches()

	case phrase.KindAssign, phrase.KindAssignRef:
		children := pn.Children()
		if len(children) < 2 {
			return
		}
		rhsType := typeinfer.Expr(children[1], v.ctx())
		bindTarget(children[0], rhsType, v.Vars)
	}
}

func (v *VariableVisitor) bindParamVertices(params []ast.Vertex) {
	for _, p := range params {
		param, ok := p.(*ast.Parameter)
		if !ok {
			continue
		}
		varVertex, ok := param.Var.(*ast.ExprVariable)
		if !ok {
			continue
		}
		ident, ok := varVertex.Name.(*ast.Identifier)
		if !ok {
			continue
		}
		name := "$" + string(ident.Value)
		v.Vars.SetType(name, typeHintString(param.Type, v.Resolver))
	}
}

func (v *VariableVisitor) bindForeach(pn *phrase.Node) {
	fe, ok := pn.Vertex().(*ast.StmtForeach)
	if !ok || len(pn.Children()) == 0 {
		return
	}
	exprType := typeinfer.Expr(pn.Children()[0], v.ctx())
	elemType := elementTypeOf(exprType)

	if vv, ok := fe.Var.(*ast.ExprVariable); ok {
		if ident, ok := vv.Name.(*ast.Identifier); ok {
			v.Vars.SetType("$"+string(ident.Value), elemType)
		}
	}
	if fe.Key != nil {
		if kv, ok := fe.Key.(*ast.ExprVariable); ok {
			if ident, ok := kv.Name.(*ast.Identifier); ok {
				v.Vars.SetType("$"+string(ident.Value), "int|string")
			}
		}
	}
}

func (v *VariableVisitor) bindCatch(pn *phrase.Node) {
	ct, ok := pn.Vertex().(*ast.StmtCatch)
	if !ok || ct.Var == nil {
		return
	}
	var typ string
	for _, t := range ct.Types {
		typ = typeinfer.Union(typ, resolveClassNameVertex(t, v.Resolver))
	}
	if vv, ok := ct.Var.(*ast.ExprVariable); ok {
		if ident, ok := vv.Name.(*ast.Identifier); ok {
			v.Vars.SetType("$"+string(ident.Value), typ)
		}
	}
}

func closureUseNames(uses []ast.Vertex) []string {
	var names []string
	for _, u := range uses {
		cu, ok := u.(*ast.ClosureUse)
		if !ok {
			continue
		}
		if vv, ok := cu.Var.(*ast.ExprVariable); ok {
			if ident, ok := vv.Name.(*ast.Identifier); ok {
				names = append(names, "$"+string(ident.Value))
			}
		}
	}
	return names
}

func applyInstanceofNarrow(cond ast.Vertex, r *resolve.Resolver, vars *vartable.Table) {
	io, ok := cond.(*ast.ExprInstanceOf)
	if !ok {
		return
	}
	vv, ok := io.Expr.(*ast.ExprVariable)
	if !ok {
		return
	}
	ident, ok := vv.Name.(*ast.Identifier)
	if !ok {
		return
	}
	fqn := resolveClassNameVertex(io.Class, r)
	if fqn == "" {
		return
	}
	vars.SetType("$"+string(ident.Value), fqn)
}

// bindTarget applies an assignment's right-hand type to its left-hand
// target: a simple variable, or a list()/[...] destructuring pattern
// (§4.I), whose element names each receive the RHS's array-of type.
func bindTarget(target tree.Node, rhsType string, vars *vartable.Table) {
	pn, ok := target.(*phrase.Node)
	if !ok {
		return
	}
	switch pn.Kind() {
	case phrase.KindVariable:
		if vv, ok := pn.Vertex().(*ast.ExprVariable); ok {
			if ident, ok := vv.Name.(*ast.Identifier); ok {
				vars.SetType("$"+string(ident.Value), rhsType)
			}
		}

	case phrase.KindList, phrase.KindArray:
		elemType := elementTypeOf(rhsType)
		var names []string
		for _, c := range pn.Children() {
			item, ok := c.(*phrase.Node)
			if !ok {
				continue
			}
			if item.Kind() == phrase.KindArrayItem {
				kids := item.Children()
				if len(kids) == 0 {
					continue
				}
				item, ok = kids[len(kids)-1].(*phrase.Node)
				if !ok {
					continue
				}
			}
			if vv, ok := item.Vertex().(*ast.ExprVariable); ok {
				if ident, ok := vv.Name.(*ast.Identifier); ok {
					names = append(names, "$"+string(ident.Value))
				}
			}
		}
		vars.SetTypeMany(names, elemType)
	}
}

// elementTypeOf returns the union of ElementOf across t's atoms, or
// "mixed" when t is bound but no atom carries an array-of suffix.
func elementTypeOf(t string) string {
	var result string
	found := false
	for _, atom := range typeinfer.Atoms(t) {
		if el := typeinfer.ElementOf(atom); el != "" {
			result = typeinfer.Union(result, el)
			found = true
		}
	}
	if !found && t != "" {
		return "mixed"
	}
	return result
}

// typeHintString renders a parameter's declared type vertex (a scalar
// Identifier or a Name-family class type) into this service's
// canonical type string. Nullable and union type-hint syntax is not
// modeled; such parameters fall back to "" (unknown), a documented
// simplification.
func typeHintString(v ast.Vertex, r *resolve.Resolver) string {
	if v == nil {
		return ""
	}
	if id, ok := v.(*ast.Identifier); ok {
		name := strings.ToLower(string(id.Value))
		switch name {
		case "self", "static":
			return r.ClassName()
		case "parent":
			return r.ParentClassName()
		default:
			return name
		}
	}
	return resolveClassNameVertex(v, r)
}

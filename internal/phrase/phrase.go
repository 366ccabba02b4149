// Package phrase adapts the github.com/VKCOM/php-parser AST (ast.Vertex)
// into the generic tree.Node shape the traversal engine, name resolver,
// and variable-type visitor are written against. Keeping the adapter in
// its own package means the hard parts of this service never import
// the parser package directly — they operate on Kind tags and a
// Vertex() escape hatch for the handful of call sites (expression type
// resolution, symbol indexing) that need the concrete node.
package phrase

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/position"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
)

// Kind constants name every phrase kind this service gives distinct
// handling to. Node kinds the resolver and visitor never special-case
// fall back to KindOther but still participate in traversal.
const (
	KindRoot            tree.Kind = "Root"
	KindNamespace       tree.Kind = "StmtNamespace"
	KindUseList         tree.Kind = "StmtUseList"
	KindGroupUseList    tree.Kind = "StmtGroupUseList"
	KindUse             tree.Kind = "StmtUse"
	KindClass           tree.Kind = "StmtClass"
	KindInterface       tree.Kind = "StmtInterface"
	KindTrait           tree.Kind = "StmtTrait"
	KindTraitUse        tree.Kind = "StmtTraitUse"
	KindClassMethod     tree.Kind = "StmtClassMethod"
	KindFunction        tree.Kind = "StmtFunction"
	KindPropertyList    tree.Kind = "StmtPropertyList"
	KindProperty        tree.Kind = "StmtProperty"
	KindClassConstList  tree.Kind = "StmtClassConstList"
	KindConstList       tree.Kind = "StmtConstList"
	KindConstant        tree.Kind = "StmtConstant"
	KindParameter       tree.Kind = "Parameter"
	KindStmtList        tree.Kind = "StmtStmtList"
	KindExpression      tree.Kind = "StmtExpression"
	KindEcho            tree.Kind = "StmtEcho"
	KindReturn          tree.Kind = "StmtReturn"
	KindGlobal          tree.Kind = "StmtGlobal"
	KindStatic          tree.Kind = "StmtStatic"
	KindIf              tree.Kind = "StmtIf"
	KindElseIf          tree.Kind = "StmtElseIf"
	KindElse            tree.Kind = "StmtElse"
	KindSwitch          tree.Kind = "StmtSwitch"
	KindCase            tree.Kind = "StmtCase"
	KindDefault         tree.Kind = "StmtDefault"
	KindFor             tree.Kind = "StmtFor"
	KindForeach         tree.Kind = "StmtForeach"
	KindWhile           tree.Kind = "StmtWhile"
	KindDo              tree.Kind = "StmtDo"
	KindTry             tree.Kind = "StmtTry"
	KindCatch           tree.Kind = "StmtCatch"
	KindFinally         tree.Kind = "StmtFinally"
	KindBreak           tree.Kind = "StmtBreak"
	KindContinue        tree.Kind = "StmtContinue"
	KindThrow           tree.Kind = "StmtThrow"

	KindAssign          tree.Kind = "ExprAssign"
	KindAssignRef       tree.Kind = "ExprAssignReference"
	KindVariable        tree.Kind = "ExprVariable"
	KindArray           tree.Kind = "ExprArray"
	KindArrayItem       tree.Kind = "ExprArrayItem"
	KindArrayDimFetch   tree.Kind = "ExprArrayDimFetch"
	KindList            tree.Kind = "ExprList"
	KindNew             tree.Kind = "ExprNew"
	KindPropertyFetch   tree.Kind = "ExprPropertyFetch"
	KindNullsafeFetch   tree.Kind = "ExprNullsafePropertyFetch"
	KindStaticProperty  tree.Kind = "ExprStaticPropertyFetch"
	KindClassConstFetch tree.Kind = "ExprClassConstFetch"
	KindMethodCall      tree.Kind = "ExprMethodCall"
	KindStaticCall      tree.Kind = "ExprStaticCall"
	KindFunctionCall    tree.Kind = "ExprFunctionCall"
	KindArgument        tree.Kind = "Argument"
	KindTernary         tree.Kind = "ExprTernary"
	KindInstanceOf      tree.Kind = "ExprInstanceOf"
	KindClosure         tree.Kind = "ExprClosure"
	KindClosureUse      tree.Kind = "ClosureUse"
	KindArrowFunction   tree.Kind = "ExprArrowFunction"
	KindBooleanNot      tree.Kind = "ExprBooleanNot"
	KindCast            tree.Kind = "ExprCast"
	KindIsset           tree.Kind = "ExprIsset"
	KindEmpty           tree.Kind = "ExprEmpty"
	KindBinary          tree.Kind = "ExprBinary"

	KindName            tree.Kind = "Name"
	KindNameRelative     tree.Kind = "NameRelative"
	KindNameFullyQual   tree.Kind = "NameFullyQualified"
	KindNamePart        tree.Kind = "NamePart"
	KindIdentifier      tree.Kind = "Identifier"

	KindScalarString    tree.Kind = "ScalarString"
	KindScalarLnumber   tree.Kind = "ScalarLnumber"
	KindScalarDnumber   tree.Kind = "ScalarDnumber"
	KindEncapsed        tree.Kind = "ScalarEncapsed"
	KindEncapsedPart    tree.Kind = "ScalarEncapsedStringPart"
	KindEncapsedVar     tree.Kind = "ScalarEncapsedStringVar"
	KindEncapsedBracket tree.Kind = "ScalarEncapsedStringBrackets"
	KindConstFetch      tree.Kind = "ExprConstFetch"

	KindOther tree.Kind = "Other"
)

// Node wraps a single ast.Vertex (or, for a handful of synthetic
// grouping cases, a nil Vertex with explicit children) and exposes it
// as a tree.Node. *Node values compare by pointer identity: within one
// tree built by From each Vertex is wrapped exactly once, so the same
// Vertex always yields the same *Node, which matters for
// ParentTracker-style ancestor lookups built on top of tree.Ancestor.
type Node struct {
	kind     tree.Kind
	vertex   ast.Vertex
	children []tree.Node
	byteLen  int
	byteOff  int
}

// Kind implements tree.Node.
func (n *Node) Kind() tree.Kind { return n.kind }

// Children implements tree.Node.
func (n *Node) Children() []tree.Node { return n.children }

// Vertex returns the wrapped parser node, or nil for synthetic groups.
// Components that need parser-specific fields (the expression
// resolver, the symbol indexer) use this as their escape hatch.
func (n *Node) Vertex() ast.Vertex { return n.vertex }

// Offset returns the start byte offset of the wrapped node within its
// source text, or 0 if unknown.
func (n *Node) Offset() int { return n.byteOff }

// End returns the end byte offset (exclusive) of the wrapped node.
func (n *Node) End() int { return n.byteOff + n.byteLen }

// Contains reports whether byte offset off falls within [Offset, End).
func (n *Node) Contains(off int) bool {
	return off >= n.byteOff && off < n.byteOff+n.byteLen
}

// positioned is satisfied by any vertex the parser attached source
// position metadata to. Node kinds without it (synthetic wrappers,
// some leaf tokens) keep a zero range rather than fail the wrap.
type positioned interface {
	GetPosition() *position.Position
}

// From wraps a parsed root (or any sub-vertex) into a *Node tree,
// computing byte ranges from the parser's position metadata where
// available.
func From(v ast.Vertex) *Node {
	if v == nil {
		return nil
	}
	n := &Node{vertex: v}
	n.kind, n.children = describe(v)
	if p, ok := v.(positioned); ok {
		if pos := p.GetPosition(); pos != nil {
			n.byteOff = pos.StartPos
			n.byteLen = pos.EndPos - pos.StartPos
		}
	}
	return n
}

// IdentifierText returns the text of an *ast.Identifier, or "" if v is
// not one.
func IdentifierText(v ast.Vertex) string {
	if id, ok := v.(*ast.Identifier); ok {
		return string(id.Value)
	}
	return ""
}

// NameText extracts the backslash-joined text of a Name-family vertex
// (Name, NameRelative, NameFullyQualified) along with which of the
// three forms it is. Non-Name vertices (a dynamic expression in name
// position) yield "".
func NameText(v ast.Vertex) (text string, relative, fullyQualified bool) {
	switch n := v.(type) {
	case *ast.Name:
		return namePartsText(n.Parts), false, false
	case *ast.NameRelative:
		return namePartsText(n.Parts), true, false
	case *ast.NameFullyQualified:
		return namePartsText(n.Parts), false, true
	}
	return "", false, false
}

func namePartsText(parts []ast.Vertex) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if np, ok := p.(*ast.NamePart); ok {
			segs = append(segs, string(np.Value))
		}
	}
	return strings.Join(segs, `\`)
}

func wrapAll(vs []ast.Vertex) []tree.Node {
	out := make([]tree.Node, 0, len(vs))
	for _, v := range vs {
		if v == nil {
			continue
		}
		out = append(out, From(v))
	}
	return out
}

func wrapOne(v ast.Vertex) []tree.Node {
	if v == nil {
		return nil
	}
	return []tree.Node{From(v)}
}

// describe type-switches on the concrete ast.Vertex and returns the
// phrase kind plus its ordered children. This is the single exhaustive
// dispatch point the design notes call for in place of per-node-type
// visitor methods: one data-driven table instead of N handwritten
// Accept-method overrides.
func describe(v ast.Vertex) (tree.Kind, []tree.Node) {
	switch n := v.(type) {
	case *ast.Root:
		return KindRoot, wrapAll(n.Stmts)
	case *ast.StmtNamespace:
		children := wrapOne(n.Name)
		children = append(children, wrapAll(n.Stmts)...)
		return KindNamespace, children
	case *ast.StmtUseList:
		return KindUseList, wrapAll(n.Uses)
	case *ast.StmtGroupUseList:
		children := wrapOne(n.Prefix)
		children = append(children, wrapAll(n.UseList)...)
		return KindGroupUseList, children
	case *ast.StmtUse:
		children := wrapOne(n.Use)
		children = append(children, wrapOne(n.Alias)...)
		return KindUse, children
	case *ast.StmtClass:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapOne(n.Extends)...)
		children = append(children, wrapAll(n.Implements)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindClass, children
	case *ast.StmtInterface:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapAll(n.Extends)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindInterface, children
	case *ast.StmtTrait:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindTrait, children
	case *ast.StmtTraitUse:
		var children []tree.Node
		children = append(children, wrapAll(n.Traits)...)
		children = append(children, wrapAll(n.Adaptations)...)
		return KindTraitUse, children
	case *ast.StmtClassMethod:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapAll(n.Params)...)
		children = append(children, wrapOne(n.ReturnType)...)
		children = append(children, wrapOne(n.Stmt)...)
		return KindClassMethod, children
	case *ast.StmtFunction:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapAll(n.Params)...)
		children = append(children, wrapOne(n.ReturnType)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindFunction, children
	case *ast.Parameter:
		var children []tree.Node
		children = append(children, wrapOne(n.Type)...)
		children = append(children, wrapOne(n.Var)...)
		children = append(children, wrapOne(n.DefaultValue)...)
		return KindParameter, children
	case *ast.StmtPropertyList:
		var children []tree.Node
		children = append(children, wrapOne(n.Type)...)
		children = append(children, wrapAll(n.Props)...)
		return KindPropertyList, children
	case *ast.StmtProperty:
		var children []tree.Node
		children = append(children, wrapOne(n.Var)...)
		children = append(children, wrapOne(n.Expr)...)
		return KindProperty, children
	case *ast.StmtClassConstList:
		return KindClassConstList, wrapAll(n.Consts)
	case *ast.StmtConstList:
		return KindConstList, wrapAll(n.Consts)
	case *ast.StmtConstant:
		var children []tree.Node
		children = append(children, wrapOne(n.Name)...)
		children = append(children, wrapOne(n.Expr)...)
		return KindConstant, children
	case *ast.StmtStmtList:
		return KindStmtList, wrapAll(n.Stmts)
	case *ast.StmtExpression:
		return KindExpression, wrapOne(n.Expr)
	case *ast.StmtEcho:
		return KindEcho, wrapAll(n.Exprs)
	case *ast.StmtReturn:
		return KindReturn, wrapOne(n.Expr)
	case *ast.StmtGlobal:
		return KindGlobal, wrapAll(n.Vars)
	case *ast.StmtStatic:
		return KindStatic, wrapAll(n.Vars)
	case *ast.StmtIf:
		var children []tree.Node
		children = append(children, wrapOne(n.Cond)...)
		children = append(children, wrapOne(n.Stmt)...)
		children = append(children, wrapAll(n.ElseIf)...)
		children = append(children, wrapOne(n.Else)...)
		return KindIf, children
	case *ast.StmtElseIf:
		var children []tree.Node
		children = append(children, wrapOne(n.Cond)...)
		children = append(children, wrapOne(n.Stmt)...)
		return KindElseIf, children
	case *ast.StmtElse:
		return KindElse, wrapOne(n.Stmt)
	case *ast.StmtSwitch:
		var children []tree.Node
		children = append(children, wrapOne(n.Cond)...)
		children = append(children, wrapAll(n.CaseList)...)
		return KindSwitch, children
	case *ast.StmtCase:
		var children []tree.Node
		children = append(children, wrapOne(n.Cond)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindCase, children
	case *ast.StmtDefault:
		return KindDefault, wrapAll(n.Stmts)
	case *ast.StmtFor:
		var children []tree.Node
		children = append(children, wrapAll(n.Init)...)
		children = append(children, wrapAll(n.Cond)...)
		children = append(children, wrapAll(n.Loop)...)
		children = append(children, wrapOne(n.Stmt)...)
		return KindFor, children
	case *ast.StmtForeach:
		var children []tree.Node
		children = append(children, wrapOne(n.Expr)...)
		children = append(children, wrapOne(n.Key)...)
		children = append(children, wrapOne(n.Var)...)
		children = append(children, wrapOne(n.Stmt)...)
		return KindForeach, children
	case *ast.StmtWhile:
		var children []tree.Node
		children = append(children, wrapOne(n.Cond)...)
		children = append(children, wrapOne(n.Stmt)...)
		return KindWhile, children
	case *ast.StmtDo:
		var children []tree.Node
		children = append(children, wrapOne(n.Stmt)...)
		children = append(children, wrapOne(n.Cond)...)
		return KindDo, children
	case *ast.StmtTry:
		var children []tree.Node
		children = append(children, wrapAll(n.Stmts)...)
		children = append(children, wrapAll(n.Catches)...)
		children = append(children, wrapOne(n.Finally)...)
		return KindTry, children
	case *ast.StmtCatch:
		var children []tree.Node
		children = append(children, wrapAll(n.Types)...)
		children = append(children, wrapOne(n.Var)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindCatch, children
	case *ast.StmtFinally:
		return KindFinally, wrapAll(n.Stmts)
	case *ast.StmtBreak:
		return KindBreak, wrapOne(n.Expr)
	case *ast.StmtContinue:
		return KindContinue, wrapOne(n.Expr)
	case *ast.StmtThrow:
		return KindThrow, wrapOne(n.Expr)

	case *ast.ExprAssign:
		return KindAssign, append(wrapOne(n.Var), wrapOne(n.Expr)...)
	case *ast.ExprAssignReference:
		return KindAssignRef, append(wrapOne(n.Var), wrapOne(n.Expr)...)
	case *ast.ExprVariable:
		return KindVariable, wrapOne(n.Name)
	case *ast.ExprArray:
		return KindArray, wrapAll(n.Items)
	case *ast.ExprArrayItem:
		return KindArrayItem, append(wrapOne(n.Key), wrapOne(n.Val)...)
	case *ast.ExprArrayDimFetch:
		return KindArrayDimFetch, append(wrapOne(n.Var), wrapOne(n.Dim)...)
	case *ast.ExprList:
		return KindList, wrapAll(n.Items)
	case *ast.ExprNew:
		return KindNew, append(wrapOne(n.Class), wrapAll(n.Args)...)
	case *ast.ExprPropertyFetch:
		return KindPropertyFetch, append(wrapOne(n.Var), wrapOne(n.Prop)...)
	case *ast.ExprNullsafePropertyFetch:
		return KindNullsafeFetch, append(wrapOne(n.Var), wrapOne(n.Prop)...)
	case *ast.ExprStaticPropertyFetch:
		return KindStaticProperty, append(wrapOne(n.Class), wrapOne(n.Prop)...)
	case *ast.ExprClassConstFetch:
		return KindClassConstFetch, append(wrapOne(n.Class), wrapOne(n.Const)...)
	case *ast.ExprMethodCall:
		return KindMethodCall, append(append(wrapOne(n.Var), wrapOne(n.Method)...), wrapAll(n.Args)...)
	case *ast.ExprStaticCall:
		return KindStaticCall, append(append(wrapOne(n.Class), wrapOne(n.Call)...), wrapAll(n.Args)...)
	case *ast.ExprFunctionCall:
		return KindFunctionCall, append(wrapOne(n.Function), wrapAll(n.Args)...)
	case *ast.Argument:
		return KindArgument, wrapOne(n.Expr)
	case *ast.ExprTernary:
		children := wrapOne(n.Cond)
		children = append(children, wrapOne(n.IfTrue)...)
		children = append(children, wrapOne(n.IfFalse)...)
		return KindTernary, children
	case *ast.ExprInstanceOf:
		return KindInstanceOf, append(wrapOne(n.Expr), wrapOne(n.Class)...)
	case *ast.ExprClosure:
		var children []tree.Node
		children = append(children, wrapAll(n.Params)...)
		children = append(children, wrapAll(n.Uses)...)
		children = append(children, wrapOne(n.ReturnType)...)
		children = append(children, wrapAll(n.Stmts)...)
		return KindClosure, children
	case *ast.ClosureUse:
		return KindClosureUse, wrapOne(n.Var)
	case *ast.ExprArrowFunction:
		var children []tree.Node
		children = append(children, wrapAll(n.Params)...)
		children = append(children, wrapOne(n.ReturnType)...)
		children = append(children, wrapOne(n.Expr)...)
		return KindArrowFunction, children
	case *ast.ExprBooleanNot:
		return KindBooleanNot, wrapOne(n.Expr)
	case *ast.ExprIsset:
		return KindIsset, wrapAll(n.Vars)
	case *ast.ExprEmpty:
		return KindEmpty, wrapOne(n.Expr)
	case *ast.ExprConstFetch:
		return KindConstFetch, wrapOne(n.Const)

	case *ast.Name:
		return KindName, wrapAll(n.Parts)
	case *ast.NameRelative:
		return KindNameRelative, wrapAll(n.Parts)
	case *ast.NameFullyQualified:
		return KindNameFullyQual, wrapAll(n.Parts)
	case *ast.NamePart:
		return KindNamePart, nil
	case *ast.Identifier:
		return KindIdentifier, nil

	case *ast.ScalarString:
		return KindScalarString, nil
	case *ast.ScalarLnumber:
		return KindScalarLnumber, nil
	case *ast.ScalarDnumber:
		return KindScalarDnumber, nil
	case *ast.ScalarEncapsed:
		return KindEncapsed, wrapAll(n.Parts)
	case *ast.ScalarEncapsedStringPart:
		return KindEncapsedPart, nil
	case *ast.ScalarEncapsedStringVar:
		return KindEncapsedVar, nil
	case *ast.ScalarEncapsedStringBrackets:
		return KindEncapsedBracket, wrapOne(n.Var)

	default:
		return binaryOrOther(v)
	}
}

// binaryOrOther handles the family of binary-expression node types
// (ExprBinaryPlus, ExprBinaryConcat, ...), which all share the shape
// {Left, Right Vertex} but are distinct Go types in the parser's AST.
// Rather than list all ~25 of them individually we extract Left/Right
// via the common accessor interface the parser generates for them.
func binaryOrOther(v ast.Vertex) (tree.Kind, []tree.Node) {
	type binary interface {
		GetLeft() ast.Vertex
		GetRight() ast.Vertex
	}
	if b, ok := v.(binary); ok {
		return KindBinary, append(wrapOne(b.GetLeft()), wrapOne(b.GetRight())...)
	}
	type hasExpr interface{ GetExpr() ast.Vertex }
	if b, ok := v.(hasExpr); ok {
		return KindOther, wrapOne(b.GetExpr())
	}
	return KindOther, nil
}

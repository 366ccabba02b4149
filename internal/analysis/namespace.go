// Package analysis drives the two cooperating visitors this service
// composes onto one traversal per document: the namespace/use tracker
// that keeps a resolve.Resolver in step with the source, and the
// variable-type visitor that keeps a vartable.Table in step with
// control flow. Both implement tree.InnerVisitor so a caller combines
// them with a single tree.MultiVisitor.
package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
)

// NamespaceVisitor keeps a resolve.Resolver current as the traversal
// crosses namespace, use, and class-like declaration boundaries. It
// never inspects expressions — its whole job is maintaining the
// ambient naming context the expression resolver and the variable
// visitor both read from Resolver.
type NamespaceVisitor struct {
	Resolver *resolve.Resolver
}

// NewNamespaceVisitor returns a visitor driving r.
func NewNamespaceVisitor(r *resolve.Resolver) *NamespaceVisitor {
	return &NamespaceVisitor{Resolver: r}
}

func (v *NamespaceVisitor) Preorder(n tree.Node, _ []tree.Node) bool {
	pn, ok := n.(*phrase.Node)
	if !ok {
		return true
	}

	switch pn.Kind() {
	case phrase.KindNamespace:
		name := ""
		if len(pn.Children()) > 0 {
			if namePn, ok := pn.Children()[0].(*phrase.Node); ok {
				name, _, _ = phrase.NameText(namePn.Vertex())
			}
		}
		v.Resolver.EnterNamespace(name)

	case phrase.KindUse:
		use, ok := pn.Vertex().(*ast.StmtUse)
		if !ok {
			return true
		}
		text, _, _ := phrase.NameText(use.Use)
		if text == "" {
			return true
		}
		alias := phrase.IdentifierText(use.Alias)
		v.Resolver.AddUse(useKindOf(use), text, alias)

	case phrase.KindClass:
		sc, ok := pn.Vertex().(*ast.StmtClass)
		if !ok {
			return true
		}
		name := phrase.IdentifierText(sc.Name)
		fqn := v.Resolver.ResolveNotFoundClassName(name)
		var parentFQN string
		if sc.Extends != nil {
			parentFQN = resolveClassNameVertex(sc.Extends, v.Resolver)
		}
		v.Resolver.PushClass(fqn, parentFQN)

	case phrase.KindInterface:
		si, ok := pn.Vertex().(*ast.StmtInterface)
		if !ok {
			return true
		}
		name := phrase.IdentifierText(si.Name)
		fqn := v.Resolver.ResolveNotFoundClassName(name)
		v.Resolver.PushClass(fqn, "")

	case phrase.KindTrait:
		st, ok := pn.Vertex().(*ast.StmtTrait)
		if !ok {
			return true
		}
		name := phrase.IdentifierText(st.Name)
		fqn := v.Resolver.ResolveNotFoundClassName(name)
		v.Resolver.PushClass(fqn, "")
	}

	return true
}

func (v *NamespaceVisitor) Postorder(n tree.Node, _ []tree.Node) {
	pn, ok := n.(*phrase.Node)
	if !ok {
		return
	}
	switch pn.Kind() {
	case phrase.KindClass, phrase.KindInterface, phrase.KindTrait:
		v.Resolver.PopClass()
	}
}

// useKindOf classifies a `use` declaration by its optional leading
// `function`/`const` keyword, mirroring the parser's UseType field on
// StmtUse/StmtUseList (nil or an empty identifier means a class/
// interface import, the common case).
func useKindOf(use *ast.StmtUse) resolve.UseKind {
	if use.Type == nil {
		return resolve.UseClass
	}
	switch strings.ToLower(phrase.IdentifierText(use.Type)) {
	case "function":
		return resolve.UseFunction
	case "const":
		return resolve.UseConstant
	default:
		return resolve.UseClass
	}
}

// resolveClassNameVertex resolves a Name-family vertex occurring in a
// class-declaration-adjacent type position (extends, implements,
// catch types, instanceof), honoring the relative/fully-qualified
// forms but not the self/static/parent substitutions that only apply
// inside expression position.
func resolveClassNameVertex(v ast.Vertex, r *resolve.Resolver) string {
	text, relative, fq := phrase.NameText(v)
	if text == "" {
		return ""
	}
	switch {
	case fq:
		return `\` + text
	case relative:
		return r.ResolveRelativeName(`namespace\` + text)
	default:
		return r.ResolveQualifiedName(text, resolve.UseClass)
	}
}

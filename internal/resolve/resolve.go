// Package resolve implements PHP's namespace and use-alias resolution
// rules: turning an unqualified, qualified, relative, or fully-qualified
// name as written in source into the fully-qualified name the symbol
// store indexes under. The resolver never consults the symbol store
// itself — callers apply the global-namespace fallback for functions
// and constants that resolveQualifiedName does not find among the use
// declarations.
package resolve

import (
	"strings"

	"github.com/whit3rabbit/go-phpintel/internal/symbol"
)

// UseKind distinguishes the three PHP use-import kinds, which are
// resolved independently (`use Foo\Bar;` vs `use function foo\bar;` vs
// `use const Foo\BAR;`).
type UseKind int

const (
	UseClass UseKind = iota
	UseFunction
	UseConstant
)

// Use is one `use` declaration in scope: the kind it applies to, the
// fully-qualified name it refers to, and the local alias source code
// refers to it by (the last segment, if no explicit `as`).
type Use struct {
	Kind  UseKind
	FQN   string
	Alias string
}

// ClassFrame is one entry of the class-context stack, pushed at class
// body entry and popped at exit.
type ClassFrame struct {
	ClassFQN  string
	ParentFQN string
}

// Resolver holds the namespace/use state needed to turn source-level
// names into fully-qualified ones. It is mutated in lockstep with a
// tree traversal by internal/analysis's namespace-tracking visitor, not
// safe for concurrent use.
type Resolver struct {
	namespace string // current namespace, no leading/trailing separator; "" at root
	uses      []Use
	classes   []ClassFrame
}

// New returns a resolver starting at the root namespace with no use
// declarations and an empty class-context stack.
func New() *Resolver {
	return &Resolver{}
}

// Namespace returns the current namespace, without leading or trailing
// separators ("" at the root).
func (r *Resolver) Namespace() string { return r.namespace }

// EnterNamespace sets the current namespace and clears use
// declarations, mirroring PHP's rule that `use` imports do not survive
// a second `namespace` statement in the same file.
func (r *Resolver) EnterNamespace(name string) {
	r.namespace = strings.Trim(name, `\`)
	r.uses = nil
}

// AddUse registers a use declaration. alias defaults to the FQN's last
// segment when empty.
func (r *Resolver) AddUse(kind UseKind, fqn, alias string) {
	fqn = strings.Trim(fqn, `\`)
	if alias == "" {
		segs := strings.Split(fqn, `\`)
		alias = segs[len(segs)-1]
	}
	r.uses = append(r.uses, Use{Kind: kind, FQN: fqn, Alias: alias})
}

// PushClass pushes a class-context frame at class body entry.
func (r *Resolver) PushClass(classFQN, parentFQN string) {
	r.classes = append(r.classes, ClassFrame{ClassFQN: classFQN, ParentFQN: parentFQN})
}

// PopClass pops the innermost class-context frame at class body exit.
// It is a no-op if the stack is empty.
func (r *Resolver) PopClass() {
	if len(r.classes) == 0 {
		return
	}
	r.classes = r.classes[:len(r.classes)-1]
}

// ClassName returns the fully-qualified name of the class context at
// the top of the stack, or "" outside any class body.
func (r *Resolver) ClassName() string {
	if len(r.classes) == 0 {
		return ""
	}
	return r.classes[len(r.classes)-1].ClassFQN
}

// ClassBaseName returns the unqualified name of the innermost class
// context, or "" outside any class body.
func (r *Resolver) ClassBaseName() string {
	fqn := r.ClassName()
	if fqn == "" {
		return ""
	}
	segs := strings.Split(fqn, `\`)
	return segs[len(segs)-1]
}

// ParentClassName returns the parent FQN recorded for the innermost
// class context, or "" if there is none.
func (r *Resolver) ParentClassName() string {
	if len(r.classes) == 0 {
		return ""
	}
	return r.classes[len(r.classes)-1].ParentFQN
}

// fqn builds a canonical fully-qualified name: a single leading
// separator, no trailing one.
func fqn(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, strings.Trim(p, `\`))
		}
	}
	return `\` + strings.Join(nonEmpty, `\`)
}

// ResolveNotFoundClassName resolves an unqualified name that did not
// match any use-alias: current_namespace + "\" + text.
func (r *Resolver) ResolveNotFoundClassName(text string) string {
	return fqn(r.namespace, text)
}

// ResolveRelativeName resolves a `namespace\...`-relative name: strips
// the leading `namespace\` and prepends the current namespace.
func (r *Resolver) ResolveRelativeName(text string) string {
	text = strings.TrimPrefix(text, `namespace\`)
	return fqn(r.namespace, text)
}

// mapKind converts a resolve.UseKind to the symbol.Kind it indexes its
// target as, for filtering the use list.
func mapKind(k UseKind) symbol.Kind {
	switch k {
	case UseFunction:
		return symbol.KindFunction
	case UseConstant:
		return symbol.KindConstant
	default:
		return symbol.KindClass
	}
}

// ResolveQualifiedName resolves a possibly-aliased name of the given
// kind. A leading `\` marks text as already fully qualified and it is
// returned as-is (separator-normalized). Otherwise, if text's first
// segment matches a use-alias of a compatible kind, that alias's FQN is
// substituted for the first segment; failing that, the current
// namespace is prepended.
func (r *Resolver) ResolveQualifiedName(text string, kind UseKind) string {
	if strings.HasPrefix(text, `\`) {
		return fqn(text)
	}

	segs := strings.Split(text, `\`)
	first := segs[0]
	want := mapKind(kind)

	for _, u := range r.uses {
		if mapKind(u.Kind) != want {
			continue
		}
		if u.Alias == first {
			rest := segs[1:]
			return fqn(append([]string{u.FQN}, rest...)...)
		}
	}

	return fqn(r.namespace, text)
}

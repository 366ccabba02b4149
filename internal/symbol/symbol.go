// Package symbol holds the workspace-wide indexed store of declared PHP
// symbols: classes, interfaces, traits, functions, methods, properties,
// class constants, parameters, and local variables. It borrows the
// teacher's two-map (forward/reverse) pattern from
// internal/scrambler.Scrambler for its indexes, guarded by the same
// sync.RWMutex discipline.
package symbol

// Kind enumerates the declared-identifier kinds this service indexes.
type Kind int

const (
	KindNamespace Kind = 1 << iota
	KindClass
	KindInterface
	KindTrait
	KindConstant
	KindFunction
	KindMethod
	KindProperty
	KindClassConstant
	KindParameter
	KindVariable
)

// Mask is a bitset of Kind values used to filter store queries.
type Mask Kind

// AnyKind matches every Kind.
const AnyKind Mask = Mask(^Kind(0))

// Match reports whether k is included in mask.
func (mask Mask) Match(k Kind) bool { return mask&Mask(k) != 0 }

// Modifier is a bitset over PHP's declaration modifiers.
type Modifier int

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModMagic
	ModReadOnly
)

// Has reports whether all bits in want are set in m.
func (m Modifier) Has(want Modifier) bool { return m&want == want }

// HasAny reports whether m shares any bit with want. A zero want can
// never overlap (an empty "forbidden" set forbids nothing), so it
// always reports false.
func (m Modifier) HasAny(want Modifier) bool { return want != 0 && m&want != 0 }

// Range is a half-open byte-offset span into the declaring document.
type Range struct {
	Start, End int
}

// Symbol is one declared identifier, plus whatever of its aggregate
// members indexing has computed (§4.F: class-like symbols are computed
// aggregates). Children holds only the members declared in the symbol
// itself; Store.LookupMembers resolves them, through the store's
// trait-flattening step (resolvedChildrenLocked), together with
// trait-imported members.
type Symbol struct {
	Kind      Kind
	Name      string // local/unqualified name
	FQN       string // fully-qualified name; empty for block-scoped locals
	Modifiers Modifier
	Type      string // textual type expression, e.g. "int|string", "\Foo\Bar"
	Doc       string

	URI   string
	Range Range

	Children []*Symbol

	// Class-like extras. Empty for non-class-like kinds.
	ParentFQN       string
	ImplementedFQNs []string
	UsedFQNs        []string // traits, in declaration order

	// Imported and TraitConflict are set only on synthetic Children
	// produced by the Store's trait-flattening step (resolvedChildrenLocked): a
	// trait-provided member copied onto the class, noting when a later
	// `use` clause overwrote an earlier trait's member of the same name.
	Imported      bool
	TraitConflict string
}

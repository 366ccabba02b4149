package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/whit3rabbit/go-phpintel/internal/phpdoc"
	"github.com/whit3rabbit/go-phpintel/internal/phrase"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
	"github.com/whit3rabbit/go-phpintel/internal/typeinfer"
	"github.com/whit3rabbit/go-phpintel/internal/vartable"
)

// Index walks a parsed document's tree and builds the Symbol forest
// the service façade's discover operation indexes into the symbol
// store (§4.F): one root Symbol per top-level class-like, function, or
// constant declaration, with members nested under their owner.
//
// Indexing uses its own Resolver, independent of any live analysis
// pass over the same document, since a file's namespace/use state at
// indexing time is self-contained.
func Index(root tree.Node, uri string) []*symbol.Symbol {
	r := resolve.New()
	var out []*symbol.Symbol
	indexStmt(root, uri, r, &out)
	return out
}

func indexStmt(n tree.Node, uri string, r *resolve.Resolver, out *[]*symbol.Symbol) {
	pn, ok := n.(*phrase.Node)
	if !ok {
		for _, c := range n.Children() {
			indexStmt(c, uri, r, out)
		}
		return
	}

	switch pn.Kind() {
	case phrase.KindNamespace:
		name := ""
		if len(pn.Children()) > 0 {
			if namePn, ok := pn.Children()[0].(*phrase.Node); ok {
				name, _, _ = phrase.NameText(namePn.Vertex())
			}
		}
		r.EnterNamespace(name)
		for _, c := range pn.Children() {
			indexStmt(c, uri, r, out)
		}

	case phrase.KindUse:
		use, ok := pn.Vertex().(*ast.StmtUse)
		if !ok {
			return
		}
		text, _, _ := phrase.NameText(use.Use)
		if text != "" {
			r.AddUse(useKindOf(use), text, phrase.IdentifierText(use.Alias))
		}

	case phrase.KindClass:
		*out = append(*out, buildClass(pn, uri, r))

	case phrase.KindInterface:
		*out = append(*out, buildInterface(pn, uri, r))

	case phrase.KindTrait:
		*out = append(*out, buildTrait(pn, uri, r))

	case phrase.KindFunction:
		*out = append(*out, buildFunction(pn, uri, r))

	case phrase.KindConstList:
		cl, ok := pn.Vertex().(*ast.StmtConstList)
		if ok {
			*out = append(*out, buildConstants(cl.Consts, declareFQN, uri, r)...)
		}

	default:
		for _, c := range pn.Children() {
			indexStmt(c, uri, r, out)
		}
	}
}

// declareFQN computes the FQN a class-like, function, or top-level
// constant declaration is indexed under: the current namespace plus
// its unqualified name, the same rule §4.E names for an unqualified
// reference that did not match any use-alias.
func declareFQN(name string, r *resolve.Resolver) string {
	return r.ResolveNotFoundClassName(name)
}

func buildClass(pn *phrase.Node, uri string, r *resolve.Resolver) *symbol.Symbol {
	sc, ok := pn.Vertex().(*ast.StmtClass)
	if !ok {
		return &symbol.Symbol{Kind: symbol.KindClass, URI: uri}
	}
	name := phrase.IdentifierText(sc.Name)
	fqn := declareFQN(name, r)

	var parentFQN string
	if sc.Extends != nil {
		parentFQN = resolveClassNameVertex(sc.Extends, r)
	}
	var implemented []string
	for _, i := range sc.Implements {
		if t := resolveClassNameVertex(i, r); t != "" {
			implemented = append(implemented, t)
		}
	}

	r.PushClass(fqn, parentFQN)
	defer r.PopClass()

	sym := &symbol.Symbol{
		Kind:            symbol.KindClass,
		Name:            name,
		FQN:             fqn,
		URI:             uri,
		Modifiers:       modifiersOf(sc.Modifiers),
		ParentFQN:       parentFQN,
		ImplementedFQNs: implemented,
		Doc:             phpdoc.Parse(phpdoc.ExtractRaw(sc)).Summary,
	}
	for _, c := range pn.Children() {
		indexClassMember(c, sym, uri, r)
	}
	return sym
}

func buildInterface(pn *phrase.Node, uri string, r *resolve.Resolver) *symbol.Symbol {
	si, ok := pn.Vertex().(*ast.StmtInterface)
	if !ok {
		return &symbol.Symbol{Kind: symbol.KindInterface, URI: uri}
	}
	name := phrase.IdentifierText(si.Name)
	fqn := declareFQN(name, r)

	var extended []string
	for _, e := range si.Extends {
		if t := resolveClassNameVertex(e, r); t != "" {
			extended = append(extended, t)
		}
	}

	r.PushClass(fqn, "")
	defer r.PopClass()

	sym := &symbol.Symbol{
		Kind:            symbol.KindInterface,
		Name:            name,
		FQN:             fqn,
		URI:             uri,
		ImplementedFQNs: extended,
		Doc:             phpdoc.Parse(phpdoc.ExtractRaw(si)).Summary,
	}
	for _, c := range pn.Children() {
		indexClassMember(c, sym, uri, r)
	}
	return sym
}

func buildTrait(pn *phrase.Node, uri string, r *resolve.Resolver) *symbol.Symbol {
	st, ok := pn.Vertex().(*ast.StmtTrait)
	if !ok {
		return &symbol.Symbol{Kind: symbol.KindTrait, URI: uri}
	}
	name := phrase.IdentifierText(st.Name)
	fqn := declareFQN(name, r)

	r.PushClass(fqn, "")
	defer r.PopClass()

	sym := &symbol.Symbol{Kind: symbol.KindTrait, Name: name, FQN: fqn, URI: uri, Doc: phpdoc.Parse(phpdoc.ExtractRaw(st)).Summary}
	for _, c := range pn.Children() {
		indexClassMember(c, sym, uri, r)
	}
	return sym
}

func indexClassMember(n tree.Node, owner *symbol.Symbol, uri string, r *resolve.Resolver) {
	pn, ok := n.(*phrase.Node)
	if !ok {
		return
	}
	switch pn.Kind() {
	case phrase.KindClassMethod:
		if m := buildMethod(pn, owner.FQN, r); m != nil {
			owner.Children = append(owner.Children, m)
		}
	case phrase.KindPropertyList:
		owner.Children = append(owner.Children, buildProperties(pn, owner.FQN, r)...)
	case phrase.KindClassConstList:
		cl, ok := pn.Vertex().(*ast.StmtClassConstList)
		if ok {
			memberFQN := func(name string, _ *resolve.Resolver) string { return owner.FQN + "::" + name }
			consts := buildConstants(cl.Consts, memberFQN, uri, r)
			for _, c := range consts {
				c.Kind = symbol.KindClassConstant
			}
			owner.Children = append(owner.Children, consts...)
		}
	case phrase.KindTraitUse:
		tu, ok := pn.Vertex().(*ast.StmtTraitUse)
		if !ok {
			return
		}
		for _, t := range tu.Traits {
			if fqn := resolveClassNameVertex(t, r); fqn != "" {
				owner.UsedFQNs = append(owner.UsedFQNs, fqn)
			}
		}
	}
}

func buildFunction(pn *phrase.Node, uri string, r *resolve.Resolver) *symbol.Symbol {
	fn, ok := pn.Vertex().(*ast.StmtFunction)
	if !ok {
		return &symbol.Symbol{Kind: symbol.KindFunction, URI: uri}
	}
	name := phrase.IdentifierText(fn.Name)
	doc := phpdoc.Parse(phpdoc.ExtractRaw(fn))
	typ := typeHintString(fn.ReturnType, r)
	if typ == "" && doc.Return != nil {
		typ = doc.Return.Type
	}
	sym := &symbol.Symbol{
		Kind: symbol.KindFunction,
		Name: name,
		FQN:  declareFQN(name, r),
		URI:  uri,
		Type: typ,
		Doc:  doc.Summary,
	}
	for _, p := range fn.Params {
		if param := buildParameter(p, r, doc); param != nil {
			sym.Children = append(sym.Children, param)
		}
	}
	return sym
}

func buildMethod(pn *phrase.Node, ownerFQN string, r *resolve.Resolver) *symbol.Symbol {
	cm, ok := pn.Vertex().(*ast.StmtClassMethod)
	if !ok {
		return nil
	}
	name := phrase.IdentifierText(cm.Name)
	doc := phpdoc.Parse(phpdoc.ExtractRaw(cm))
	typ := typeHintString(cm.ReturnType, r)
	if typ == "" && doc.Return != nil {
		typ = doc.Return.Type
	}
	sym := &symbol.Symbol{
		Kind:      symbol.KindMethod,
		Name:      name,
		FQN:       ownerFQN + "::" + name,
		Modifiers: modifiersOf(cm.Modifiers),
		Type:      typ,
		Doc:       doc.Summary,
	}
	for _, p := range cm.Params {
		if param := buildParameter(p, r, doc); param != nil {
			sym.Children = append(sym.Children, param)
		}
	}
	return sym
}

func buildProperties(pn *phrase.Node, ownerFQN string, r *resolve.Resolver) []*symbol.Symbol {
	pl, ok := pn.Vertex().(*ast.StmtPropertyList)
	if !ok {
		return nil
	}
	typ := typeHintString(pl.Type, r)
	mods := modifiersOf(pl.Modifiers)
	doc := phpdoc.Parse(phpdoc.ExtractRaw(pl))

	var out []*symbol.Symbol
	for _, p := range pl.Props {
		sp, ok := p.(*ast.StmtProperty)
		if !ok {
			continue
		}
		vv, ok := sp.Var.(*ast.ExprVariable)
		if !ok {
			continue
		}
		ident, ok := vv.Name.(*ast.Identifier)
		if !ok {
			continue
		}
		name := string(ident.Value)
		propType := typ
		if propType == "" {
			propType = doc.VarType(name)
		}
		out = append(out, &symbol.Symbol{
			Kind:      symbol.KindProperty,
			Name:      name,
			FQN:       ownerFQN + "::$" + name,
			Modifiers: mods,
			Type:      propType,
			Doc:       doc.Summary,
		})
	}
	return out
}

// buildConstants builds Symbol entries for a const-list's declarations
// (top-level or class constants share the same StmtConstant shape),
// using fqnOf to compute each one's FQN since the two cases differ
// (namespace-qualified vs. "Owner::NAME").
func buildConstants(consts []ast.Vertex, fqnOf func(name string, r *resolve.Resolver) string, uri string, r *resolve.Resolver) []*symbol.Symbol {
	ctx := &typeinfer.Context{Resolver: r, Store: symbol.NewStore(), Vars: vartable.New()}
	var out []*symbol.Symbol
	for _, c := range consts {
		cst, ok := c.(*ast.StmtConstant)
		if !ok {
			continue
		}
		name := phrase.IdentifierText(cst.Name)
		if name == "" {
			continue
		}
		var typ string
		if cst.Expr != nil {
			typ = typeinfer.Expr(phrase.From(cst.Expr), ctx)
		}
		out = append(out, &symbol.Symbol{
			Kind: symbol.KindConstant,
			Name: name,
			FQN:  fqnOf(name, r),
			URI:  uri,
			Type: typ,
			Doc:  phpdoc.Parse(phpdoc.ExtractRaw(cst)).Summary,
		})
	}
	return out
}

func buildParameter(p ast.Vertex, r *resolve.Resolver, fnDoc phpdoc.Doc) *symbol.Symbol {
	param, ok := p.(*ast.Parameter)
	if !ok {
		return nil
	}
	vv, ok := param.Var.(*ast.ExprVariable)
	if !ok {
		return nil
	}
	ident, ok := vv.Name.(*ast.Identifier)
	if !ok {
		return nil
	}
	name := string(ident.Value)
	typ := typeHintString(param.Type, r)
	if typ == "" {
		typ = fnDoc.ParamType(name)
	}
	return &symbol.Symbol{
		Kind: symbol.KindParameter,
		Name: "$" + name,
		Type: typ,
	}
}

// modifiersOf converts a declaration's modifier-keyword vertices into
// a Modifier bitmask, applying PHP's implicit-public default when no
// visibility keyword is present.
func modifiersOf(mods []ast.Vertex) symbol.Modifier {
	var m symbol.Modifier
	for _, mod := range mods {
		switch strings.ToLower(phrase.IdentifierText(mod)) {
		case "public":
			m |= symbol.ModPublic
		case "protected":
			m |= symbol.ModProtected
		case "private":
			m |= symbol.ModPrivate
		case "static":
			m |= symbol.ModStatic
		case "abstract":
			m |= symbol.ModAbstract
		case "final":
			m |= symbol.ModFinal
		case "readonly":
			m |= symbol.ModReadOnly
		}
	}
	if m&(symbol.ModPublic|symbol.ModProtected|symbol.ModPrivate) == 0 {
		m |= symbol.ModPublic
	}
	return m
}

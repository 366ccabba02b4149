// Package phpdoc extracts the handful of PHPDoc tags the type resolver
// and symbol store actually consume — @var, @param, @return, plus the
// summary line — from a raw `/** ... */` comment token. It follows the
// same strip-then-line-scan approach as PeterBooker-wpdocs's docblock
// parser, pared down to the tags this service needs rather than a full
// PHPDoc tag vocabulary.
package phpdoc

import (
	"regexp"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
)

// tokenGetter is satisfied by any vertex exposing its primary token,
// the same narrow interface the teacher's comment stripper type-checks
// against (internal/transformer.tokenGetter) rather than importing the
// concrete node types one by one.
type tokenGetter interface {
	GetToken() *token.Token
}

var (
	varRegex    = regexp.MustCompile(`^@var\s+(\S+)(?:\s+(\$\w+))?\s*(.*)$`)
	paramRegex  = regexp.MustCompile(`^@param\s+(\S+)\s+(\$\w+)\s*(.*)$`)
	returnRegex = regexp.MustCompile(`^@return\s+(\S+)\s*(.*)$`)
)

// Param is one @param tag.
type Param struct {
	Type        string
	Name        string // without the leading $
	Description string
}

// Var is one @var tag. Name is "" when the tag omits the variable name
// (the common case for a property's own doc-comment).
type Var struct {
	Type        string
	Name        string
	Description string
}

// Doc is the subset of a parsed PHPDoc comment this service uses.
type Doc struct {
	Summary string
	Params  []Param
	Return  *Param
	Vars    []Var
}

// ExtractRaw returns the text of the doc-comment token immediately
// preceding v's primary token, or "" if v carries no token or no such
// comment. Only the nearest T_DOC_COMMENT is used; an intervening
// T_COMMENT between the docblock and the declaration breaks adjacency,
// so a detached `//` note never gets mistaken for the declaration's
// documentation.
func ExtractRaw(v ast.Vertex) string {
	tg, ok := v.(tokenGetter)
	if !ok {
		return ""
	}
	t := tg.GetToken()
	if t == nil {
		return ""
	}
	for i := len(t.FreeFloating) - 1; i >= 0; i-- {
		ff := t.FreeFloating[i]
		if ff == nil {
			continue
		}
		if ff.ID == token.T_DOC_COMMENT {
			return string(ff.Value)
		}
		if ff.ID == token.T_COMMENT {
			return ""
		}
	}
	return ""
}

// Parse extracts Doc fields from a raw doc-comment token, delimiters
// included ("/** ... */").
func Parse(raw string) Doc {
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")

	var doc Doc
	var summary []string
	sawTag := false

	for _, line := range strings.Split(raw, "\n") {
		line = stripLinePrefix(line)

		switch {
		case strings.HasPrefix(line, "@var"):
			sawTag = true
			if m := varRegex.FindStringSubmatch(line); m != nil {
				doc.Vars = append(doc.Vars, Var{
					Type:        normalizeType(m[1]),
					Name:        strings.TrimPrefix(m[2], "$"),
					Description: strings.TrimSpace(m[3]),
				})
			}
		case strings.HasPrefix(line, "@param"):
			sawTag = true
			if m := paramRegex.FindStringSubmatch(line); m != nil {
				doc.Params = append(doc.Params, Param{
					Type:        normalizeType(m[1]),
					Name:        strings.TrimPrefix(m[2], "$"),
					Description: strings.TrimSpace(m[3]),
				})
			}
		case strings.HasPrefix(line, "@return"):
			sawTag = true
			if m := returnRegex.FindStringSubmatch(line); m != nil {
				doc.Return = &Param{
					Type:        normalizeType(m[1]),
					Description: strings.TrimSpace(m[2]),
				}
			}
		case strings.HasPrefix(line, "@"):
			sawTag = true // an unrecognized tag still ends the summary
		case !sawTag:
			if line != "" || len(summary) > 0 {
				summary = append(summary, line)
			}
		}
	}

	doc.Summary = strings.TrimSpace(strings.Join(trimTrailingBlank(summary), " "))
	return doc
}

// ParamType returns the declared type of the @param tag named "name"
// (no leading $), or "" if none matches.
func (doc Doc) ParamType(name string) string {
	for _, p := range doc.Params {
		if p.Name == name {
			return p.Type
		}
	}
	return ""
}

// VarType returns the declared type for a property named "name": the
// matching named @var tag if one exists, else the sole unnamed @var
// tag (the common single-property form, `/** @var int */` directly
// above `private $count;`).
func (doc Doc) VarType(name string) string {
	for _, v := range doc.Vars {
		if v.Name == name {
			return v.Type
		}
	}
	if len(doc.Vars) == 1 && doc.Vars[0].Name == "" {
		return doc.Vars[0].Type
	}
	return ""
}

func stripLinePrefix(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "* "):
		return trimmed[2:]
	case strings.HasPrefix(trimmed, "*"):
		return trimmed[1:]
	default:
		return trimmed
	}
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// normalizeType rewrites a PHPDoc nullable shorthand ("?T") into this
// service's union form ("T|null").
func normalizeType(t string) string {
	if strings.HasPrefix(t, "?") {
		return strings.TrimPrefix(t, "?") + "|null"
	}
	return t
}

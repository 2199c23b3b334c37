package request

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Reference is a use of another node's result found in a request.
type Reference struct {
	NodeID string
	Field  string
	// Raw is the whole placeholder the reference appears in.
	Raw string
}

// placeholder is a {{ ... }} span whose body is an HCL expression over node
// results, such as {{ build.stdout }} or {{ build.result.return_code == 0 }}.
type placeholder struct {
	start, end int
	raw        string
	expr       hclsyntax.Expression
	refs       []Reference
}

// placeholders finds the placeholders in s. Spans whose body is not an
// expression over node results are left alone, so shell text such as
// awk '{{print}}' passes through.
func placeholders(s string) []placeholder {
	var out []placeholder
	for i := 0; i < len(s); {
		open := strings.Index(s[i:], openDelim)
		if open < 0 {
			break
		}
		open += i
		end := strings.Index(s[open+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += open + len(openDelim) + len(closeDelim)
		i = end

		raw := s[open:end]
		body := raw[len(openDelim) : len(raw)-len(closeDelim)]
		expr, diags := hclsyntax.ParseExpression([]byte(body), "placeholder", hcl.InitialPos)
		if diags.HasErrors() {
			continue
		}
		refs, ok := referencesOf(expr, raw)
		if !ok {
			continue
		}
		out = append(out, placeholder{start: open, end: end, raw: raw, expr: expr, refs: refs})
	}
	return out
}

// referencesOf maps every variable of expr to a node result field. It fails
// when expr has no variables or uses a bare name without a field.
func referencesOf(expr hcl.Expression, raw string) ([]Reference, bool) {
	vars := expr.Variables()
	if len(vars) == 0 {
		return nil, false
	}
	refs := make([]Reference, 0, len(vars))
	for _, traversal := range vars {
		field := resultField(traversal)
		if field == "" {
			return nil, false
		}
		refs = append(refs, Reference{NodeID: traversal.RootName(), Field: field, Raw: raw})
	}
	return refs, true
}

// resultField returns the field a traversal reads; <id>.result.<field> and
// <id>.<field> are equivalent.
func resultField(traversal hcl.Traversal) string {
	var names []string
	for _, t := range traversal[1:] {
		attr, ok := t.(hcl.TraverseAttr)
		if !ok {
			break
		}
		names = append(names, attr.Name)
	}
	switch {
	case len(names) > 1 && names[0] == "result":
		return names[1]
	case len(names) > 0:
		return names[0]
	}
	return ""
}

// References lists the node results used anywhere in req, in order of
// first appearance and without duplicates.
func References(req Request) []Reference {
	var refs []Reference
	seen := map[Reference]bool{}
	Walk(req, func(s string) {
		for _, p := range placeholders(s) {
			for _, ref := range p.refs {
				if seen[ref] {
					continue
				}
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	})
	return refs
}

// Lookup returns the result object of a node. It reports false when the
// node has no recorded result.
type Lookup func(nodeID string) (cty.Value, bool)

// Substitute returns a copy of req with every resolvable placeholder
// replaced by its value. A placeholder that names a node without a result,
// or that fails to evaluate, is left untouched. req itself is never
// modified.
func Substitute(req Request, lookup Lookup) Request {
	return Map(req, func(s string) string {
		found := placeholders(s)
		if len(found) == 0 {
			return s
		}
		var b strings.Builder
		last := 0
		for _, p := range found {
			b.WriteString(s[last:p.start])
			b.WriteString(evaluate(p, lookup))
			last = p.end
		}
		b.WriteString(s[last:])
		return b.String()
	})
}

func evaluate(p placeholder, lookup Lookup) string {
	vars := make(map[string]cty.Value, len(p.refs))
	for _, ref := range p.refs {
		if _, ok := vars[ref.NodeID]; ok {
			continue
		}
		v, ok := lookup(ref.NodeID)
		if !ok {
			return p.raw
		}
		vars[ref.NodeID] = v
	}
	val, diags := p.expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return p.raw
	}
	if val.IsNull() {
		return ""
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return p.raw
	}
	return str.AsString()
}

// Value returns r as the object placeholders evaluate against. Trailing
// line breaks are trimmed from the captured output.
func (r Result) Value() cty.Value {
	attrs := map[string]cty.Value{
		"stdout":      cty.StringVal(strings.TrimRight(r.Stdout, "\r\n")),
		"stderr":      cty.StringVal(strings.TrimRight(r.Stderr, "\r\n")),
		"return_code": cty.NumberIntVal(int64(r.ReturnCode)),
		"returncode":  cty.NumberIntVal(int64(r.ReturnCode)),
		"success":     cty.BoolVal(r.Success),
		"error":       cty.StringVal(r.Error),
	}
	attrs["result"] = cty.ObjectVal(maps.Clone(attrs))
	return cty.ObjectVal(attrs)
}

// Walk calls fn for every string-valued field of req, recursing into
// composite parts.
func Walk(req Request, fn func(string)) {
	Map(req, func(s string) string {
		fn(s)
		return s
	})
}

// Map returns a deep copy of req with fn applied to every string-valued
// field that carries user data.
func Map(req Request, fn func(string) string) Request {
	switch r := req.(type) {
	case *Shell:
		c := *r
		c.Argv = mapSlice(r.Argv, fn)
		c.Cwd = fn(r.Cwd)
		c.Env = mapValues(r.Env, fn)
		c.Stdin = fn(r.Stdin)
		return &c
	case *Python:
		c := *r
		c.Code = fn(r.Code)
		c.File = fn(r.File)
		c.Args = mapSlice(r.Args, fn)
		c.Cwd = fn(r.Cwd)
		c.Env = mapValues(r.Env, fn)
		c.Stdin = fn(r.Stdin)
		return &c
	case *Docker:
		c := *r
		c.Container = fn(r.Container)
		c.Image = fn(r.Image)
		c.Command = mapSlice(r.Command, fn)
		c.Options = mapValues(r.Options, fn)
		c.Cwd = fn(r.Cwd)
		c.Stdin = fn(r.Stdin)
		return &c
	case *File:
		c := *r
		c.Path = fn(r.Path)
		c.Dst = fn(r.Dst)
		return &c
	case *Composite:
		c := *r
		c.Parts = make([]Part, len(r.Parts))
		for i, p := range r.Parts {
			c.Parts[i] = Part{Request: Map(p.Request, fn), Drivers: p.Drivers}
		}
		return &c
	default:
		panic(fmt.Sprintf("request: unhandled variant %T", r))
	}
}

func mapSlice(in []string, fn func(string) string) []string {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	for i := range out {
		out[i] = fn(out[i])
	}
	return out
}

func mapValues(in map[string]string, fn func(string) string) map[string]string {
	if in == nil {
		return nil
	}
	out := maps.Clone(in)
	for _, k := range slices.Sorted(maps.Keys(out)) {
		out[k] = fn(out[k])
	}
	return out
}

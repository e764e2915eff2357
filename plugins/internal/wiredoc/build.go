package wiredoc

import (
	"github.com/kspt-johs/disir-go/pkg/disir"
)

// BuildMold walks a finalized Mold into its wire Document, suitable for
// a serializer plugin to hand to yaml.Marshal/json.Marshal.
func BuildMold(mold *disir.Mold) (*Document, error) {
	root := mold.Context()
	doc := &Document{Version: mold.Version().String()}
	doc.Documentation = buildDocumentation(root)

	children, err := root.AllElements()
	if err != nil {
		return nil, err
	}
	defer putAll(children)

	for _, child := range children {
		switch child.Type() {
		case disir.VariantSection:
			s, err := buildMoldSection(child)
			if err != nil {
				return nil, err
			}
			doc.Sections = append(doc.Sections, *s)
		case disir.VariantKeyval:
			k, err := buildMoldKeyval(child)
			if err != nil {
				return nil, err
			}
			doc.Keyvals = append(doc.Keyvals, *k)
		}
	}
	return doc, nil
}

func buildMoldSection(ctx *disir.Context) (*Section, error) {
	s := &Section{Name: ctx.Name()}
	s.Documentation = buildDocumentation(ctx)
	s.Restrictions = buildRestrictions(ctx)

	children, err := ctx.AllElements()
	if err != nil {
		return nil, err
	}
	defer putAll(children)

	for _, child := range children {
		switch child.Type() {
		case disir.VariantSection:
			sub, err := buildMoldSection(child)
			if err != nil {
				return nil, err
			}
			s.Sections = append(s.Sections, *sub)
		case disir.VariantKeyval:
			kv, err := buildMoldKeyval(child)
			if err != nil {
				return nil, err
			}
			s.Keyvals = append(s.Keyvals, *kv)
		}
	}
	return s, nil
}

func buildMoldKeyval(ctx *disir.Context) (*Keyval, error) {
	k := &Keyval{
		Name: ctx.Name(),
		Type: ctx.ValueType().String(),
	}
	k.Documentation = buildDocumentation(ctx)
	k.Restrictions = buildRestrictions(ctx)

	for _, d := range ctx.Defaults() {
		k.Defaults = append(k.Defaults, Default{
			Introduced: d.Introduced.String(),
			Value:      d.Value.Format(),
		})
	}
	return k, nil
}

// BuildConfig walks a finalized Config into its wire Document.
func BuildConfig(cfg *disir.Config) (*Document, error) {
	root := cfg.Context()
	doc := &Document{Version: cfg.Version().String()}
	doc.FreeTexts = root.FreeTexts()

	children, err := root.AllElements()
	if err != nil {
		return nil, err
	}
	defer putAll(children)

	for _, child := range children {
		switch child.Type() {
		case disir.VariantSection:
			s, err := buildConfigSection(child)
			if err != nil {
				return nil, err
			}
			doc.Sections = append(doc.Sections, *s)
		case disir.VariantKeyval:
			k, err := buildConfigKeyval(child)
			if err != nil {
				return nil, err
			}
			doc.Keyvals = append(doc.Keyvals, *k)
		}
	}
	return doc, nil
}

func buildConfigSection(ctx *disir.Context) (*Section, error) {
	s := &Section{Name: ctx.Name()}
	s.FreeTexts = ctx.FreeTexts()

	children, err := ctx.AllElements()
	if err != nil {
		return nil, err
	}
	defer putAll(children)

	for _, child := range children {
		switch child.Type() {
		case disir.VariantSection:
			sub, err := buildConfigSection(child)
			if err != nil {
				return nil, err
			}
			s.Sections = append(s.Sections, *sub)
		case disir.VariantKeyval:
			kv, err := buildConfigKeyval(child)
			if err != nil {
				return nil, err
			}
			s.Keyvals = append(s.Keyvals, *kv)
		}
	}
	return s, nil
}

func buildConfigKeyval(ctx *disir.Context) (*Keyval, error) {
	formatted := ctx.Value().Format()
	k := &Keyval{
		Name:  ctx.Name(),
		Value: &formatted,
	}
	k.FreeTexts = ctx.FreeTexts()
	return k, nil
}

func buildDocumentation(ctx *disir.Context) []Documentation {
	entries := ctx.DocumentationEntries()
	if len(entries) == 0 {
		return nil
	}
	out := make([]Documentation, len(entries))
	for i, e := range entries {
		out[i] = Documentation{Introduced: e.Introduced.String(), Text: e.Text}
	}
	return out
}

func buildRestrictions(ctx *disir.Context) []Restriction {
	entries := ctx.RestrictionEntries()
	if len(entries) == 0 {
		return nil
	}
	out := make([]Restriction, len(entries))
	for i, e := range entries {
		r := Restriction{Introduced: e.Introduced.String()}
		if e.HasDeprecated {
			r.Deprecated = e.Deprecated.String()
		}
		switch e.Kind {
		case disir.RestrictionEntryMin:
			// SetEntryBounds always sets both bounds on the one
			// restriction Context it creates (kind only records
			// which side the core classified it as); carry both
			// through so ExportMold can reconstruct with one call.
			r.Kind = RestrictionKindEntryMin
			r.Min = e.Min
			r.Max = e.Max
		case disir.RestrictionEntryMax:
			r.Kind = RestrictionKindEntryMax
			r.Min = e.Min
			r.Max = e.Max
		case disir.RestrictionValueNumeric:
			r.Kind = RestrictionKindValueNumeric
			r.Min = e.Min
			r.Max = e.Max
		case disir.RestrictionValueEnum:
			r.Kind = RestrictionKindValueEnum
			r.EnumValues = e.EnumValues
		}
		out[i] = r
	}
	return out
}

func putAll(children []*disir.Context) {
	for _, c := range children {
		_ = c.PutContext()
	}
}

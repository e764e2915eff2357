package wiredoc

import (
	"fmt"

	"github.com/kspt-johs/disir-go/pkg/disir"
)

// ExportMold builds a fresh, finalized Mold from a wire Document
// (the inverse of BuildMold).
func ExportMold(doc *Document) (*disir.Mold, error) {
	mold, err := disir.BeginMold()
	if err != nil {
		return nil, err
	}

	for _, d := range doc.Documentation {
		if err := addMoldDocumentation(func() (*disir.Documentation, error) { return mold.BeginDocumentation() }, d); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Sections {
		if err := exportMoldSection(mold, s); err != nil {
			return nil, err
		}
	}
	for _, k := range doc.Keyvals {
		if err := exportMoldKeyval(mold, k); err != nil {
			return nil, err
		}
	}

	if err := mold.Finalize(); err != nil {
		return nil, err
	}
	return mold, nil
}

// moldContainer is the common surface Mold and Section both offer for
// attaching nested Sections/Keyvals — letting exportMoldSection recurse
// without caring which one it was handed.
type moldContainer interface {
	BeginSection() (*disir.Section, error)
	BeginKeyval() (*disir.Keyval, error)
}

func exportMoldSection(parent moldContainer, s Section) error {
	section, err := parent.BeginSection()
	if err != nil {
		return err
	}
	if err := section.SetName(s.Name); err != nil {
		return err
	}
	for _, d := range s.Documentation {
		if err := addMoldDocumentation(section.BeginDocumentation, d); err != nil {
			return err
		}
	}
	for _, r := range s.Restrictions {
		if err := addRestriction(section.BeginRestriction, r); err != nil {
			return err
		}
	}
	for _, sub := range s.Sections {
		if err := exportMoldSection(section, sub); err != nil {
			return err
		}
	}
	for _, k := range s.Keyvals {
		if err := exportMoldKeyval(section, k); err != nil {
			return err
		}
	}
	return section.Finalize()
}

func exportMoldKeyval(parent moldContainer, k Keyval) error {
	keyval, err := parent.BeginKeyval()
	if err != nil {
		return err
	}
	if err := keyval.SetName(k.Name); err != nil {
		return err
	}
	vtype, err := parseValueType(k.Type)
	if err != nil {
		return err
	}
	if err := keyval.SetValueType(vtype); err != nil {
		return err
	}
	for _, d := range k.Defaults {
		def, err := keyval.BeginDefault()
		if err != nil {
			return err
		}
		val, err := disir.ParseValue(vtype, d.Value)
		if err != nil {
			return err
		}
		if err := def.SetValue(val); err != nil {
			return err
		}
		introduced, err := parseVersionOrZero(d.Introduced)
		if err != nil {
			return err
		}
		if err := def.SetIntroduced(introduced); err != nil {
			return err
		}
		if err := def.Finalize(); err != nil {
			return err
		}
	}
	for _, d := range k.Documentation {
		if err := addMoldDocumentation(keyval.BeginDocumentation, d); err != nil {
			return err
		}
	}
	for _, r := range k.Restrictions {
		if err := addRestriction(keyval.BeginRestriction, r); err != nil {
			return err
		}
	}
	return keyval.Finalize()
}

func addMoldDocumentation(begin func() (*disir.Documentation, error), d Documentation) error {
	doc, err := begin()
	if err != nil {
		return err
	}
	if err := doc.SetText(d.Text); err != nil {
		return err
	}
	introduced, err := parseVersionOrZero(d.Introduced)
	if err != nil {
		return err
	}
	if err := doc.SetIntroduced(introduced); err != nil {
		return err
	}
	return doc.Finalize()
}

func addRestriction(begin func() (*disir.Restriction, error), r Restriction) error {
	restriction, err := begin()
	if err != nil {
		return err
	}
	switch r.Kind {
	case RestrictionKindEntryMin, RestrictionKindEntryMax:
		if err := restriction.SetEntryBounds(int64(r.Min), int64(r.Max)); err != nil {
			return err
		}
	case RestrictionKindValueNumeric:
		if err := restriction.SetNumericBounds(r.Min, r.Max); err != nil {
			return err
		}
	case RestrictionKindValueEnum:
		if err := restriction.SetEnumValues(r.EnumValues); err != nil {
			return err
		}
	default:
		return fmt.Errorf("wiredoc: unknown restriction kind %q", r.Kind)
	}
	introduced, err := parseVersionOrZero(r.Introduced)
	if err != nil {
		return err
	}
	if err := restriction.SetIntroduced(introduced); err != nil {
		return err
	}
	if r.Deprecated != "" {
		deprecated, err := disir.ParseVersion(r.Deprecated)
		if err != nil {
			return err
		}
		if err := restriction.SetDeprecated(deprecated); err != nil {
			return err
		}
	}
	return restriction.Finalize()
}

// ExportConfig builds a fresh, finalized Config against mold from a
// wire Document (the inverse of BuildConfig).
func ExportConfig(doc *Document, mold *disir.Mold) (*disir.Config, error) {
	cfg, err := disir.BeginConfig(mold)
	if err != nil {
		return nil, err
	}
	if doc.Version != "" {
		v, err := disir.ParseVersion(doc.Version)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetVersion(v); err != nil {
			return nil, err
		}
	}
	for _, text := range doc.FreeTexts {
		if err := addConfigFreeText(cfg.BeginFreeText, text); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Sections {
		if err := exportConfigSection(cfg, s); err != nil {
			return nil, err
		}
	}
	for _, k := range doc.Keyvals {
		if err := exportConfigKeyval(cfg, k); err != nil {
			return nil, err
		}
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configContainer mirrors moldContainer for the Config-side recursion.
// FreeText children are added through each node's own BeginFreeText,
// not through this interface.
type configContainer interface {
	BeginSection() (*disir.Section, error)
	BeginKeyval() (*disir.Keyval, error)
}

func exportConfigSection(parent configContainer, s Section) error {
	section, err := parent.BeginSection()
	if err != nil {
		return err
	}
	if err := section.SetName(s.Name); err != nil {
		return err
	}
	for _, text := range s.FreeTexts {
		if err := addConfigFreeText(section.BeginFreeText, text); err != nil {
			return err
		}
	}
	for _, sub := range s.Sections {
		if err := exportConfigSection(section, sub); err != nil {
			return err
		}
	}
	for _, k := range s.Keyvals {
		if err := exportConfigKeyval(section, k); err != nil {
			return err
		}
	}
	return section.Finalize()
}

func exportConfigKeyval(parent configContainer, k Keyval) error {
	keyval, err := parent.BeginKeyval()
	if err != nil {
		return err
	}
	if err := keyval.SetName(k.Name); err != nil {
		return err
	}

	// MoldEquivalent is a non-owning weak reference (spec.md §3) — no
	// PutContext needed, unlike FindElement/Elements/AllElements.
	moldEquiv, err := keyval.Context().MoldEquivalent()
	if err != nil {
		return err
	}
	vtype := moldEquiv.ValueType()

	text := ""
	if k.Value != nil {
		text = *k.Value
	}
	val, err := disir.ParseValue(vtype, text)
	if err != nil {
		return err
	}
	if err := keyval.SetValue(val); err != nil {
		return err
	}
	for _, ft := range k.FreeTexts {
		if err := addConfigFreeText(keyval.BeginFreeText, ft); err != nil {
			return err
		}
	}
	return keyval.Finalize()
}

func addConfigFreeText(begin func() (*disir.FreeText, error), text string) error {
	ft, err := begin()
	if err != nil {
		return err
	}
	if err := ft.SetText(text); err != nil {
		return err
	}
	return ft.Finalize()
}

func parseValueType(s string) (disir.ValueType, error) {
	switch s {
	case "STRING":
		return disir.ValueTypeString, nil
	case "INTEGER":
		return disir.ValueTypeInteger, nil
	case "FLOAT":
		return disir.ValueTypeFloat, nil
	case "BOOLEAN":
		return disir.ValueTypeBoolean, nil
	case "ENUM":
		return disir.ValueTypeEnum, nil
	default:
		return disir.ValueTypeUnknown, fmt.Errorf("wiredoc: unknown value type %q", s)
	}
}

func parseVersionOrZero(s string) (disir.Version, error) {
	if s == "" {
		return disir.UnspecifiedVersion, nil
	}
	return disir.ParseVersion(s)
}

// Package wiredoc is the shared wire schema and tree walker behind
// plugins/yamlserializer and plugins/jsonserializer (spec.md §6: a
// serializer plugin consumes the core only through begin/finalize/
// destroy/putcontext, the value setters, set_name/set_introduced/
// set_deprecated, and get_elements/find_element(s)/get_name/get_value_*/
// get_default).
//
// A Document is the format-agnostic in-memory shape both yaml.v3 and
// encoding/json marshal: lists, not maps, so field order survives a
// round trip without relying on Go map iteration order. Building one
// from a *disir.Mold/*disir.Config (Build*) and the reverse
// (Export*) are the only two operations this package exposes; the YAML
// and JSON plugins differ only in how they get bytes in and out of a
// Document.
package wiredoc

// Document is the root of a serialized Mold or Config tree.
type Document struct {
	Version       string          `yaml:"version,omitempty" json:"version,omitempty"`
	Documentation []Documentation `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Sections      []Section       `yaml:"sections,omitempty" json:"sections,omitempty"`
	Keyvals       []Keyval        `yaml:"keyvals,omitempty" json:"keyvals,omitempty"`
	FreeTexts     []string        `yaml:"free_texts,omitempty" json:"free_texts,omitempty"`
}

// Section is a named, nestable grouping of Keyvals and further Sections
// (spec.md §3). Restrictions only ever appear on the Mold side; a
// Config-side Section carries FreeTexts instead.
type Section struct {
	Name          string          `yaml:"name" json:"name"`
	Documentation []Documentation `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Restrictions  []Restriction   `yaml:"restrictions,omitempty" json:"restrictions,omitempty"`
	Sections      []Section       `yaml:"sections,omitempty" json:"sections,omitempty"`
	Keyvals       []Keyval        `yaml:"keyvals,omitempty" json:"keyvals,omitempty"`
	FreeTexts     []string        `yaml:"free_texts,omitempty" json:"free_texts,omitempty"`
}

// Keyval is a named leaf. On the Mold side it carries Type and Defaults;
// on the Config side it carries Value. A plugin decoding a document
// tells which side it is building from the caller (BuildMold vs
// BuildConfig / ExportMold vs ExportConfig), so both fields live on the
// one struct rather than forcing two near-identical wire types.
type Keyval struct {
	Name          string          `yaml:"name" json:"name"`
	Type          string          `yaml:"type,omitempty" json:"type,omitempty"`
	Value         *string         `yaml:"value,omitempty" json:"value,omitempty"`
	Defaults      []Default       `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Documentation []Documentation `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Restrictions  []Restriction   `yaml:"restrictions,omitempty" json:"restrictions,omitempty"`
	FreeTexts     []string        `yaml:"free_texts,omitempty" json:"free_texts,omitempty"`
}

// Default is one (introduced-version, value) entry in a mold-side
// Keyval's default queue.
type Default struct {
	Introduced string `yaml:"introduced" json:"introduced"`
	Value      string `yaml:"value" json:"value"`
}

// Documentation is one (introduced-version, text) entry.
type Documentation struct {
	Introduced string `yaml:"introduced,omitempty" json:"introduced,omitempty"`
	Text       string `yaml:"text" json:"text"`
}

// Restriction is one typed constraint entry (spec.md §4.5). Kind is one
// of the RestrictionKind* constants below; which of Min/Max/EnumValues
// is populated depends on Kind.
type Restriction struct {
	Kind       string   `yaml:"kind" json:"kind"`
	Introduced string   `yaml:"introduced,omitempty" json:"introduced,omitempty"`
	Deprecated string   `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Min        float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max        float64  `yaml:"max,omitempty" json:"max,omitempty"`
	EnumValues []string `yaml:"enum_values,omitempty" json:"enum_values,omitempty"`
}

// Restriction Kind values, the wire spelling of disir.RestrictionType.
const (
	RestrictionKindEntryMin     = "entry_min"
	RestrictionKindEntryMax     = "entry_max"
	RestrictionKindValueNumeric = "value_numeric"
	RestrictionKindValueEnum    = "value_enum"
)

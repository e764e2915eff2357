package disir

// This file gathers the Context-level query surface spec.md §6 names as
// the boundary serializer plugins are allowed to depend on:
// get_elements, find_element(s), get_name, get_value_*, get_default.
// The typed wrappers (Mold.BeginSection, Keyval.SetValue, ...) cover
// construction; these cover read-only tree walking once a plugin only
// holds a bare *Context handed back by one of them.

// Name returns this Context's name (empty for a Mold/Config root, which
// is unnamed).
func (c *Context) Name() string { return c.getName() }

// FindElement returns the first child named name, refcount incremented
// for the caller. StatusNotExist if c has no such child; StatusWrongContext
// if c is not a container variant.
func (c *Context) FindElement(name string) (*Context, error) { return findElement(c, name) }

// FindElementAt returns the index-th (0-based) child named name,
// refcount incremented for the caller.
func (c *Context) FindElementAt(name string, index int) (*Context, error) {
	return indexElement(c, name, index)
}

// Elements returns every child named name, refcount incremented for
// each returned handle.
func (c *Context) Elements(name string) ([]*Context, error) { return getElements(c, name) }

// AllElements returns every child of c, in insertion order, refcount
// incremented for each returned handle.
func (c *Context) AllElements() ([]*Context, error) { return getAllElements(c) }

// Value returns this Context's value (meaningful on a Config-side
// Keyval; zero Value otherwise).
func (c *Context) Value() Value { return c.value }

// ValueType returns this Context's declared value type (meaningful on
// a Keyval, either side).
func (c *Context) ValueType() ValueType { return c.valueType }

// DefaultAt resolves the effective default value for this (mold-side
// Keyval) Context at the given target version (spec.md §4.4 GetDefault).
func (c *Context) DefaultAt(target Version) (Value, bool) {
	entry, ok := effectiveDefault(c, target)
	if !ok {
		return Value{}, false
	}
	return entry.value, true
}

// MoldEquivalent resolves the mold-side Context matching this
// config-side node's position in the tree.
func (c *Context) MoldEquivalent() (*Context, error) { return findMoldEquivalent(c) }

// PutContext releases a reference obtained from FindElement(At)/
// Elements/AllElements — the query-path counterpart to a typed
// wrapper's Destroy (which releases a construction-owned handle).
func (c *Context) PutContext() error { return c.putcontext() }

// DefaultEntry is a read-only snapshot of one Default queue entry,
// returned by Defaults for collaborators (plugins/*serializer) that
// need the full version history rather than just the entry resolved
// for one target version (DefaultAt).
type DefaultEntry struct {
	Introduced Version
	Value      Value
}

// Defaults returns every Default entry attached to this (mold-side
// Keyval) Context, sorted ascending by introduced version.
func (c *Context) Defaults() []DefaultEntry {
	out := make([]DefaultEntry, len(c.defaults))
	for i, d := range c.defaults {
		out[i] = DefaultEntry{Introduced: d.introduced, Value: d.value}
	}
	return out
}

// DocumentationEntry is a read-only snapshot of one Documentation
// queue entry.
type DocumentationEntry struct {
	Introduced Version
	Text       string
}

// DocumentationEntries returns every Documentation entry attached to
// this Context (Mold root, Section or Keyval), sorted ascending by
// introduced version.
func (c *Context) DocumentationEntries() []DocumentationEntry {
	out := make([]DocumentationEntry, len(c.documentation))
	for i, d := range c.documentation {
		out[i] = DocumentationEntry{Introduced: d.introduced, Text: d.freeText}
	}
	return out
}

// RestrictionEntry is a read-only snapshot of one Restriction queue
// entry.
type RestrictionEntry struct {
	Kind          RestrictionType
	Introduced    Version
	Deprecated    Version
	HasDeprecated bool
	Min           float64
	Max           float64
	EnumValues    []string
}

// RestrictionEntries returns every Restriction attached to this
// (mold-side) Section or Keyval Context.
func (c *Context) RestrictionEntries() []RestrictionEntry {
	out := make([]RestrictionEntry, len(c.restrictions))
	for i, r := range c.restrictions {
		out[i] = RestrictionEntry{
			Kind:          r.restrictionType,
			Introduced:    r.introduced,
			Deprecated:    r.deprecated,
			HasDeprecated: r.hasDeprecated,
			Min:           r.restrictionMin,
			Max:           r.restrictionMax,
			EnumValues:    append([]string(nil), r.restrictionEnum...),
		}
	}
	return out
}

// FreeTexts returns every FreeText body attached to this Config-side
// Context, insertion order.
func (c *Context) FreeTexts() []string {
	out := make([]string, len(c.freeTexts))
	for i, f := range c.freeTexts {
		out[i] = f.freeText
	}
	return out
}

package disir

// Keyval wraps a Context of VariantKeyval: a named leaf carrying a single
// typed value (spec.md §3). On the mold side a Keyval declares its
// ValueType plus any Default, Documentation and Restriction children; on
// the config side it carries a concrete Value that must match its mold
// equivalent's declared type.
type Keyval struct{ ctx *Context }

func beginKeyval(parent *Context) (*Keyval, error) {
	if !parent.variant.isContainer() {
		return nil, wrapf(StatusWrongContext, "keyval requires a container parent, got %s", parent.variant)
	}
	ctx, err := begin(parent, VariantKeyval)
	if err != nil {
		return nil, err
	}
	return &Keyval{ctx: ctx}, nil
}

// SetName sets the Keyval's name.
func (k *Keyval) SetName(name string) error { return k.ctx.setName(name) }

// Name returns the Keyval's name.
func (k *Keyval) Name() string { return k.ctx.getName() }

// Context exposes the underlying *Context.
func (k *Keyval) Context() *Context { return k.ctx }

// KeyvalFromContext wraps a Context found via Context.FindElement (or
// similar) back into a *Keyval, for callers — resolvercache.Resolver,
// namely — that only hold the Context returned by a tree walk.
func KeyvalFromContext(ctx *Context) (*Keyval, error) {
	if ctx.variant != VariantKeyval {
		return nil, wrapf(StatusWrongContext, "context is a %s, not a keyval", ctx.variant)
	}
	return &Keyval{ctx: ctx}, nil
}

// SetValueType declares the value type this (mold-side) Keyval accepts.
// Illegal once the Keyval has been finalized.
func (k *Keyval) SetValueType(t ValueType) error {
	if err := k.ctx.checkUsable(); err != nil {
		return err
	}
	if !k.ctx.isMoldSide() {
		return wrapf(StatusWrongContext, "SetValueType is mold-side only")
	}
	if !k.ctx.st.has(stateConstructing) {
		return wrapf(StatusContextInWrongState, "cannot change the value type of a finalized keyval")
	}
	k.ctx.valueType = t
	return nil
}

// ValueType returns the Keyval's declared value type.
func (k *Keyval) ValueType() ValueType { return k.ctx.valueType }

// SetValue sets a (config-side) Keyval's concrete value. The value's
// type must match the mold equivalent's declared type once one can be
// resolved (checked fully at validation time; this is a fast local
// check when the Keyval already knows its own valueType, e.g. because it
// was copied from a Default).
func (k *Keyval) SetValue(v Value) error {
	if err := k.ctx.checkUsable(); err != nil {
		return err
	}
	if k.ctx.valueType != ValueTypeUnknown && v.Type() != k.ctx.valueType {
		return wrapf(StatusWrongValueType, "value is %s, keyval declares %s", v.Type(), k.ctx.valueType)
	}
	k.ctx.value = v
	k.ctx.valueType = v.Type()
	return nil
}

// Value returns the Keyval's current value.
func (k *Keyval) Value() Value { return k.ctx.value }

// BeginDefault starts constructing a Default entry on this (mold-side)
// Keyval.
func (k *Keyval) BeginDefault() (*Default, error) { return BeginDefault(k.ctx) }

// DefaultAt resolves the effective default value for this (mold-side)
// Keyval at the given target version, applying the greatest-introduced-
// version-at-or-below-target rule (spec.md §4.4). Exported for
// collaborators outside the core — resolvercache caches this result,
// and serializer plugins use it to pre-populate Config documents.
func (k *Keyval) DefaultAt(target Version) (Value, bool) {
	entry, ok := effectiveDefault(k.ctx, target)
	if !ok {
		return Value{}, false
	}
	return entry.value, true
}

// BeginDocumentation starts constructing a Documentation entry on this
// Keyval.
func (k *Keyval) BeginDocumentation() (*Documentation, error) { return BeginDocumentation(k.ctx) }

// BeginRestriction starts constructing a Restriction entry on this
// (mold-side) Keyval.
func (k *Keyval) BeginRestriction() (*Restriction, error) { return BeginRestriction(k.ctx) }

// BeginFreeText starts constructing a FreeText note on this (config-side)
// Keyval.
func (k *Keyval) BeginFreeText() (*FreeText, error) { return BeginFreeText(k.ctx) }

// Finalize completes construction and attaches the Keyval to its
// parent's elementStorage.
func (k *Keyval) Finalize() error {
	ctx := k.ctx
	err := finalize(&ctx)
	k.ctx = ctx
	return err
}

func (c *Context) finalizeKeyval() error {
	if c.name == "" {
		return wrapf(StatusInvalidArgument, "keyval finalized with no name")
	}
	if c.isMoldSide() {
		if c.valueType == ValueTypeUnknown {
			return wrapf(StatusInvalidArgument, "mold-side keyval %q has no declared value type", c.name)
		}
		// A mold keyval added directly to a Mold root must carry at
		// least one Default entry (spec.md §4.3, §4.8 — mirrors
		// original_source/src/validate.c's mold-keyval check: "Missing
		// default entry for keyval.").
		if len(c.defaults) == 0 {
			return wrapf(StatusInvalidArgument, "mold-side keyval %q has no default entry", c.name)
		}
	}
	if !c.isMoldSide() && c.value.Type() == ValueTypeUnknown {
		return wrapf(StatusInvalidArgument, "config-side keyval %q has no value set", c.name)
	}
	if !c.isMoldSide() {
		if err := c.checkParentCardinalityOnFinalize(); err != nil {
			return err
		}
	}
	return nil
}

// checkParentCardinalityOnFinalize rejects finalizing a config-side
// Section/Keyval when doing so would push its name's count past the
// mold equivalent's max-entry restriction on an already-Finalized
// parent — the one cardinality check that must happen at finalize
// time rather than wait for Validate, since a still-Constructing
// parent is explicitly allowed to temporarily exceed its own bound
// (original_source/src/validate.c
// validate_finalized_parent_constructing_child_violating_max_restriction:
// "Restriction will be violated - but we allow it" when the parent is
// not yet finalized).
func (c *Context) checkParentCardinalityOnFinalize() error {
	if c.parent == nil || !c.parent.st.has(stateFinalized) {
		return nil
	}
	if c.moldEquivalent == nil {
		return nil
	}
	current := c.parent.elements.count(c.name)
	for _, r := range effectiveRestrictions(c.moldEquivalent.restrictions, c.root.version) {
		if r.restrictionType.isExclusive() && !r.checkEntryCount(current+1) {
			return wrapf(StatusRestrictionViolated, "%s %q exceeds maximum entries under finalized parent", c.variant, c.name)
		}
	}
	return nil
}

// Destroy releases this Keyval's reference.
func (k *Keyval) Destroy() error { return k.ctx.destroy() }

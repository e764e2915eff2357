package disir

// Default wraps a Context of VariantDefault: a mold-side, version-scoped
// fallback value for a Keyval (spec.md §4.1). A Keyval may carry several
// Default entries introduced at different Mold versions; resolution
// picks the greatest entry whose introduced version is <= the target
// version, falling back to the entry with the smallest introduced
// version if none qualifies (spec.md §4.6, resolver.go).
type Default struct{ ctx *Context }

// BeginDefault starts constructing a new Default attached to a mold-side
// Keyval parent.
func BeginDefault(parent *Context) (*Default, error) {
	if parent.variant != VariantKeyval {
		return nil, wrapf(StatusWrongContext, "default requires a Keyval parent, got %s", parent.variant)
	}
	ctx, err := begin(parent, VariantDefault)
	if err != nil {
		return nil, err
	}
	return &Default{ctx: ctx}, nil
}

// SetValue sets the fallback Value this Default carries. Its ValueType
// must match the parent Keyval's declared type.
func (d *Default) SetValue(v Value) error {
	if err := d.ctx.checkUsable(); err != nil {
		return err
	}
	if d.ctx.parent.valueType != ValueTypeUnknown && v.Type() != d.ctx.parent.valueType {
		return wrapf(StatusWrongValueType, "default value is %s, keyval declares %s",
			v.Type(), d.ctx.parent.valueType)
	}
	d.ctx.value = v
	return nil
}

// SetIntroduced sets the Mold version from which this Default entry
// applies.
func (d *Default) SetIntroduced(v Version) error {
	if err := d.ctx.checkUsable(); err != nil {
		return err
	}
	d.ctx.introduced = v
	return nil
}

// Value returns the fallback value this entry carries.
func (d *Default) Value() Value { return d.ctx.value }

// Introduced returns the version this entry was introduced at.
func (d *Default) Introduced() Version { return d.ctx.introduced }

// Finalize completes construction and attaches the Default to its
// parent Keyval's default queue, kept sorted by ascending introduced
// version.
func (d *Default) Finalize() error {
	ctx := d.ctx
	err := finalize(&ctx)
	d.ctx = ctx
	return err
}

func (c *Context) finalizeDefault() error {
	if c.parent == nil || c.parent.variant != VariantKeyval {
		return wrapf(StatusWrongContext, "default requires a Keyval parent")
	}
	for _, existing := range c.parent.defaults {
		if existing.introduced.Compare(c.introduced) == 0 {
			return wrapf(StatusConflictingSemver,
				"duplicate default introduced at version %s", c.introduced)
		}
	}
	if c.value.Type() == ValueTypeUnknown {
		return wrapf(StatusInvalidArgument, "default has no value set")
	}
	return nil
}

// resolveDefault picks the Default entry from list whose introduced
// version is the greatest one <= target, falling back to the entry with
// the smallest introduced version if none qualify (spec.md §4.6). list
// must already be sorted ascending by introduced version.
func resolveDefault(list []*Context, target Version) (*Context, bool) {
	if len(list) == 0 {
		return nil, false
	}
	best := list[0]
	for _, entry := range list {
		if entry.introduced.LessOrEqual(target) {
			best = entry
		} else {
			break
		}
	}
	return best, true
}

package disir

// Documentation wraps a Context of VariantDocumentation: a version-scoped
// human-readable description attached to a Mold root, Section or Keyval
// (spec.md §4.1, supplemented from original_source per SPEC_FULL.md
// Section C). Like Default, a node may carry several Documentation
// entries across versions; resolution uses the same version-window rule
// (resolver.go).
type Documentation struct{ ctx *Context }

// BeginDocumentation starts constructing a new Documentation attached to
// parent, which must be a Mold root, Section or Keyval.
func BeginDocumentation(parent *Context) (*Documentation, error) {
	switch parent.variant {
	case VariantMold, VariantSection, VariantKeyval:
	default:
		return nil, wrapf(StatusWrongContext,
			"documentation requires a Mold, Section or Keyval parent, got %s", parent.variant)
	}
	ctx, err := begin(parent, VariantDocumentation)
	if err != nil {
		return nil, err
	}
	return &Documentation{ctx: ctx}, nil
}

// SetText sets the documentation body.
func (d *Documentation) SetText(text string) error {
	if err := d.ctx.checkUsable(); err != nil {
		return err
	}
	if text == "" {
		return wrapf(StatusInvalidArgument, "documentation text must not be empty")
	}
	d.ctx.freeText = text
	return nil
}

// SetIntroduced sets the version from which this documentation entry
// applies.
func (d *Documentation) SetIntroduced(v Version) error {
	if err := d.ctx.checkUsable(); err != nil {
		return err
	}
	d.ctx.introduced = v
	return nil
}

// Text returns the documentation body.
func (d *Documentation) Text() string { return d.ctx.freeText }

// Introduced returns the version this entry was introduced at.
func (d *Documentation) Introduced() Version { return d.ctx.introduced }

// Finalize completes construction and attaches the Documentation to its
// parent's documentation queue, kept sorted by ascending introduced
// version.
func (d *Documentation) Finalize() error {
	ctx := d.ctx
	err := finalize(&ctx)
	d.ctx = ctx
	return err
}

func (c *Context) finalizeDocumentation() error {
	if c.parent == nil {
		return wrapf(StatusInvalidArgument, "documentation requires a parent")
	}
	for _, existing := range c.parent.documentation {
		if existing.introduced.Compare(c.introduced) == 0 {
			return wrapf(StatusConflictingSemver,
				"duplicate documentation introduced at version %s", c.introduced)
		}
	}
	if c.freeText == "" {
		return wrapf(StatusInvalidArgument, "documentation has no text set")
	}
	return nil
}

// resolveDocumentation picks the entry whose introduced version is the
// greatest one <= target, falling back to the earliest entry. Same rule
// as resolveDefault (spec.md §4.6).
func resolveDocumentation(list []*Context, target Version) (*Context, bool) {
	return resolveDefault(list, target)
}

package disir

// Section wraps a Context of VariantSection: a named, nestable grouping
// of Keyval and further Section children (spec.md §3). The same Variant
// serves both mold-side (schema) and config-side (data) trees; which
// role a given Section plays is determined by its root's variant.
type Section struct{ ctx *Context }

func beginSection(parent *Context) (*Section, error) {
	if !parent.variant.isContainer() {
		return nil, wrapf(StatusWrongContext, "section requires a container parent, got %s", parent.variant)
	}
	ctx, err := begin(parent, VariantSection)
	if err != nil {
		return nil, err
	}
	return &Section{ctx: ctx}, nil
}

// SetName sets the Section's name. Names need not be unique: a parent
// may hold several Sections with the same name.
func (s *Section) SetName(name string) error { return s.ctx.setName(name) }

// Name returns the Section's name.
func (s *Section) Name() string { return s.ctx.getName() }

// Context exposes the underlying *Context.
func (s *Section) Context() *Context { return s.ctx }

// BeginSection starts constructing a nested Section child.
func (s *Section) BeginSection() (*Section, error) { return beginSection(s.ctx) }

// BeginKeyval starts constructing a Keyval child.
func (s *Section) BeginKeyval() (*Keyval, error) { return beginKeyval(s.ctx) }

// BeginDocumentation starts constructing a Documentation entry on this
// Section (mold-side only).
func (s *Section) BeginDocumentation() (*Documentation, error) { return BeginDocumentation(s.ctx) }

// BeginRestriction starts constructing a Restriction entry on this
// Section (mold-side only).
func (s *Section) BeginRestriction() (*Restriction, error) { return BeginRestriction(s.ctx) }

// BeginFreeText starts constructing a FreeText note on this Section
// (config-side only, by convention).
func (s *Section) BeginFreeText() (*FreeText, error) { return BeginFreeText(s.ctx) }

// Finalize completes construction and attaches the Section to its
// parent's elementStorage.
func (s *Section) Finalize() error {
	ctx := s.ctx
	err := finalize(&ctx)
	s.ctx = ctx
	return err
}

func (c *Context) finalizeSection() error {
	if c.name == "" {
		return wrapf(StatusInvalidArgument, "section finalized with no name")
	}
	if !c.isMoldSide() {
		if err := c.checkParentCardinalityOnFinalize(); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases this Section's reference.
func (s *Section) Destroy() error { return s.ctx.destroy() }

// isMoldSide reports whether ctx belongs to a Mold tree, as opposed to a
// Config tree, by walking to its root.
func (c *Context) isMoldSide() bool { return c.root.variant == VariantMold }

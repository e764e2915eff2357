package disir

// Mold is the schema root: a tree of Section and Keyval contexts that
// describes the shape, types, defaults and restrictions a Config must
// satisfy (spec.md §2, §3). A Mold is built once via BeginMold and its
// finalize chain, then used read-only as the template many Configs are
// validated and resolved against.
type Mold struct{ ctx *Context }

// BeginMold starts constructing a new Mold root.
func BeginMold() (*Mold, error) {
	ctx, err := begin(nil, VariantMold)
	if err != nil {
		return nil, err
	}
	return &Mold{ctx: ctx}, nil
}

// Finalize completes construction of the Mold root. A Mold's own version
// is derived from the greatest version any descendant Default,
// Documentation or Restriction entry introduces, defaulting to 1.0.0 for
// an otherwise version-less tree (spec.md §4.1; Major.Minor only —
// Patch is not considered when aggregating, matching
// original_source/lib/dx_mold_update_version's Major.Minor-only
// comparison. Recorded as an Open Question decision in DESIGN.md).
func (m *Mold) Finalize() error {
	ctx := m.ctx
	err := finalize(&ctx)
	m.ctx = ctx
	return err
}

func (c *Context) finalizeMold() error {
	if c.version.Compare(UnspecifiedVersion) == 0 {
		c.version = Version{Major: 1, Minor: 0, Patch: 0}
	}
	greatest := c.version
	c.walkVersions(func(v Version) {
		if v.Major > greatest.Major || (v.Major == greatest.Major && v.Minor > greatest.Minor) {
			greatest = Version{Major: v.Major, Minor: v.Minor, Patch: 0}
		}
	})
	c.version = greatest
	return nil
}

// walkVersions visits the introduced version of every Default,
// Documentation and Restriction in the subtree rooted at c.
func (c *Context) walkVersions(visit func(Version)) {
	for _, d := range c.defaults {
		visit(d.introduced)
	}
	for _, d := range c.documentation {
		visit(d.introduced)
	}
	for _, r := range c.restrictions {
		visit(r.introduced)
	}
	if c.elements != nil {
		for _, child := range c.elements.order {
			child.walkVersions(visit)
		}
	}
}

// Version returns the Mold's own semantic version, valid only once
// Finalize has succeeded.
func (m *Mold) Version() Version { return m.ctx.version }

// Context exposes the underlying *Context for use by query.go,
// validator.go and collaborator packages operating purely through the
// public API (spec.md §6 boundary).
func (m *Mold) Context() *Context { return m.ctx }

// BeginSection starts constructing a new mold-side Section child.
func (m *Mold) BeginSection() (*Section, error) { return beginSection(m.ctx) }

// BeginKeyval starts constructing a new mold-side Keyval child.
func (m *Mold) BeginKeyval() (*Keyval, error) { return beginKeyval(m.ctx) }

// BeginDocumentation starts constructing a Documentation entry on the
// Mold root itself.
func (m *Mold) BeginDocumentation() (*Documentation, error) { return BeginDocumentation(m.ctx) }

// Destroy releases the Mold's own reference, tearing down the whole
// schema tree once nothing else holds a reference into it.
func (m *Mold) Destroy() error { return m.ctx.destroy() }

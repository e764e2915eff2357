package disir

// Config is the data root: a tree of Section and Keyval contexts holding
// concrete values that a Mold describes the shape of (spec.md §2, §3). A
// Config is validated against its Mold equivalent via Validate
// (validator.go) and is the unit serializer plugins read and write.
type Config struct {
	ctx  *Context
	mold *Mold // the Mold this Config is built against; may be nil until attached
}

// BeginConfig starts constructing a new Config root against mold. mold
// must already be finalized; passing nil defers mold-equivalent
// resolution to AttachMold before the Config can be validated.
func BeginConfig(mold *Mold) (*Config, error) {
	ctx, err := begin(nil, VariantConfig)
	if err != nil {
		return nil, err
	}
	cfg := &Config{ctx: ctx, mold: mold}
	if mold != nil {
		cfg.ctx.version = mold.Version()
		cfg.ctx.moldRoot = mold.ctx
	}
	return cfg, nil
}

// AttachMold binds an existing, already-finalized Config to mold,
// re-pointing mold-equivalent resolution (query.go) at a new Mold tree —
// used when a Config built against an old Mold version needs to be
// re-validated against a newer one (spec.md §4.7 Resolve semantics).
func (cfg *Config) AttachMold(mold *Mold) error {
	if err := cfg.ctx.checkUsable(); err != nil {
		return err
	}
	cfg.mold = mold
	cfg.ctx.moldRoot = mold.ctx
	return nil
}

// Mold returns the Mold this Config currently resolves against, or nil
// if none has been attached.
func (cfg *Config) Mold() *Mold { return cfg.mold }

// SetVersion sets the Config's own version, used to select which
// Default/Documentation/Restriction version window applies when
// resolving against its Mold (spec.md §4.6).
func (cfg *Config) SetVersion(v Version) error {
	if err := cfg.ctx.checkUsable(); err != nil {
		return err
	}
	cfg.ctx.version = v
	return nil
}

// Version returns the Config's own version.
func (cfg *Config) Version() Version { return cfg.ctx.version }

// Finalize completes construction of the Config root.
func (cfg *Config) Finalize() error {
	ctx := cfg.ctx
	err := finalize(&ctx)
	cfg.ctx = ctx
	return err
}

func (c *Context) finalizeConfig() error {
	if c.version.Compare(UnspecifiedVersion) == 0 {
		c.version = Version{Major: 1, Minor: 0, Patch: 0}
	}
	return nil
}

// Context exposes the underlying *Context.
func (cfg *Config) Context() *Context { return cfg.ctx }

// BeginSection starts constructing a new config-side Section child.
func (cfg *Config) BeginSection() (*Section, error) { return beginSection(cfg.ctx) }

// BeginKeyval starts constructing a new config-side Keyval child.
func (cfg *Config) BeginKeyval() (*Keyval, error) { return beginKeyval(cfg.ctx) }

// BeginFreeText starts constructing a FreeText note on the Config root.
func (cfg *Config) BeginFreeText() (*FreeText, error) { return BeginFreeText(cfg.ctx) }

// Destroy releases the Config's own reference, tearing down the whole
// data tree once nothing else holds a reference into it.
func (cfg *Config) Destroy() error { return cfg.ctx.destroy() }

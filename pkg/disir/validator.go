package disir

// ValidationEntry is one collected validation finding, identifying the
// dotted path to the offending node (spec.md §4.8). Path is built from
// Section/Keyval names; the root segment is a resolveRootName label.
type ValidationEntry struct {
	Path    string
	Status  Status
	Message string
}

// Validate walks cfg against its currently attached Mold, aggregating a
// single strongest verdict (spec.md §4.8) plus, when collect is true,
// every ValidationEntry describing why. The walk itself only reads the
// tree, but each visited node's Invalid state bit is recomputed from
// scratch every call: calling Validate twice in a row on an unmodified
// tree yields identical results and identical bit state (idempotent),
// it just isn't a no-op at the bit level.
//
// Verdict precedence, strongest wins:
//
//	InternalError > RestrictionViolated > WrongValueType > MoldMissing >
//	InvalidContext > ElementsInvalid > Ok
//
// A node that is itself Ok but has at least one non-Ok descendant
// resolves to ElementsInvalid, never Ok (spec.md Open Questions,
// decided in DESIGN.md).
func Validate(cfg *Config) (Status, []ValidationEntry) {
	if err := cfg.ctx.checkUsable(); err != nil {
		return StatusInvalidContext, []ValidationEntry{{Path: resolveRootName(cfg.ctx), Status: StatusInvalidContext, Message: err.Error()}}
	}
	return validateNode(cfg.ctx, resolveRootName(cfg.ctx), true)
}

// ValidateQuiet is Validate without collecting entries, for callers that
// only need the aggregate verdict (e.g. a fast pre-flight check before a
// write).
func ValidateQuiet(cfg *Config) Status {
	status, _ := validateNode(cfg.ctx, "", false)
	return status
}

// ValidateMold walks mold itself, confirming every Keyval still
// satisfies its own mold-root invariants — value-type known, at least
// one Default (spec.md §4.8 "Keyval (Mold root)"). finalize already
// hard-enforces both at construction time, so a Mold that finalized
// successfully always reports Ok here; ValidateMold exists for parity
// with Config's Validate, giving any caller holding a bare *Mold handle
// the same idempotent Invalid-bit-marking walk, regardless of how that
// handle was obtained.
func ValidateMold(mold *Mold) (Status, []ValidationEntry) {
	if err := mold.ctx.checkUsable(); err != nil {
		return StatusInvalidContext, []ValidationEntry{{Path: resolveRootName(mold.ctx), Status: StatusInvalidContext, Message: err.Error()}}
	}
	return validateMoldNode(mold.ctx, resolveRootName(mold.ctx), true)
}

func validateMoldNode(c *Context, path string, collect bool) (Status, []ValidationEntry) {
	var entries []ValidationEntry
	c.st &^= stateInvalid
	direct := StatusOK

	if c.variant == VariantKeyval {
		switch {
		case c.valueType == ValueTypeUnknown:
			direct = StatusWrongValueType
			c.fatalMsg = wrapf(StatusWrongValueType, "keyval %q has no declared value type", c.name).Error()
		case len(c.defaults) == 0:
			direct = StatusInvalidContext
			c.fatalMsg = wrapf(StatusInvalidContext, "keyval %q has no default entry", c.name).Error()
		}
	}

	if collect && direct != StatusOK {
		entries = append(entries, ValidationEntry{Path: path, Status: direct, Message: c.getErrorMessage()})
	}
	if direct != StatusOK {
		c.st |= stateInvalid
	}

	overall := direct
	if c.elements != nil {
		for _, child := range c.elements.order {
			childStatus, childEntries := validateMoldNode(child, path+"."+child.name, collect)
			if childStatus != StatusOK {
				overall = strongerVerdict(overall, StatusElementsInvalid)
			}
			entries = append(entries, childEntries...)
		}
	}

	return overall, entries
}

// validateNode computes context's own verdict, then recurses into its
// children. Per spec.md §4.8/§9, validate is idempotent: the Invalid
// state bit is cleared unconditionally before re-evaluation, then
// raised again only if this node's own (non-inherited) checks fail —
// never merely because a descendant is invalid, which is reported as
// ElementsInvalid instead (original_source/src/validate.c
// dx_validate_context: "Optimistically clear INVALID state. The below
// checks will return it to invalid state if checks fail.", combined
// with validate_context_validity never folding a child's status into
// its own CONTEXT_STATE_INVALID assignment).
func validateNode(c *Context, path string, collect bool) (Status, []ValidationEntry) {
	var entries []ValidationEntry
	c.st &^= stateInvalid

	direct := StatusOK
	var moldEquiv *Context

	if !c.isMoldSide() {
		var err error
		moldEquiv, err = findMoldEquivalent(c)
		if err != nil {
			direct = StatusMoldMissing
			c.fatalMsg = wrapf(StatusMoldMissing, "%s %q has no mold equivalent", c.variant, c.name).Error()
		}
	}

	target := c.root.version

	if c.variant == VariantKeyval && moldEquiv != nil {
		if c.value.Type() != moldEquiv.valueType {
			direct = strongerVerdict(direct, StatusWrongValueType)
			c.fatalMsg = wrapf(StatusWrongValueType, "value type %s assigned, mold equivalent declares %s", c.value.Type(), moldEquiv.valueType).Error()
		} else {
			for _, r := range effectiveRestrictions(moldEquiv.restrictions, target) {
				if !r.restrictionType.isExclusive() && !r.checkValue(c.value) {
					direct = strongerVerdict(direct, StatusRestrictionViolated)
					c.fatalMsg = wrapf(StatusRestrictionViolated, "value restriction violated for keyval %q", c.name).Error()
				}
			}
		}
	}

	if collect && direct != StatusOK {
		entries = append(entries, ValidationEntry{Path: path, Status: direct, Message: c.getErrorMessage()})
	}

	overall := direct

	if c.elements != nil {
		seen := make(map[string]bool)
		for _, child := range c.elements.order {
			childPath := path + "." + child.name

			if !seen[child.name] {
				seen[child.name] = true
				if moldEquiv != nil && moldEquiv.elements != nil {
					if moldChild, ok := moldEquiv.elements.first(child.name); ok {
						count := c.elements.count(child.name)
						for _, r := range effectiveRestrictions(moldChild.restrictions, target) {
							if r.restrictionType.isExclusive() && !r.checkEntryCount(count) {
								direct = strongerVerdict(direct, StatusRestrictionViolated)
								overall = strongerVerdict(overall, StatusRestrictionViolated)
								if collect {
									entries = append(entries, ValidationEntry{
										Path:    childPath,
										Status:  StatusRestrictionViolated,
										Message: "cardinality restriction violated",
									})
								}
							}
						}
					}
				}
			}

			childStatus, childEntries := validateNode(child, childPath, collect)
			if childStatus != StatusOK {
				overall = strongerVerdict(overall, StatusElementsInvalid)
			}
			entries = append(entries, childEntries...)
		}

		// Entry-count restrictions can also be violated by a name being
		// entirely absent (count zero) rather than merely miscounted —
		// walk the mold side's own children to catch names the config
		// never mentions at all.
		if moldEquiv != nil && moldEquiv.elements != nil {
			for _, moldChild := range moldEquiv.elements.order {
				if seen[moldChild.name] {
					continue
				}
				seen[moldChild.name] = true
				childPath := path + "." + moldChild.name
				count := c.elements.count(moldChild.name)
				for _, r := range effectiveRestrictions(moldChild.restrictions, target) {
					if r.restrictionType.isExclusive() && !r.checkEntryCount(count) {
						direct = strongerVerdict(direct, StatusRestrictionViolated)
						overall = strongerVerdict(overall, StatusRestrictionViolated)
						if collect {
							entries = append(entries, ValidationEntry{
								Path:    childPath,
								Status:  StatusRestrictionViolated,
								Message: "cardinality restriction violated",
							})
						}
					}
				}
			}
		}
	}

	// Only this node's own verdict marks it Invalid — a child being
	// invalid surfaces as ElementsInvalid on the parent without
	// flipping the parent's own Invalid bit.
	if direct != StatusOK {
		c.st |= stateInvalid
	}

	return overall, entries
}

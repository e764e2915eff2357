package disir

// RestrictionType tags which constraint a Restriction context enforces
// (spec.md §4.5). Exclusive restrictions bound a KeyVal's cardinality
// within its parent Section; inclusive restrictions bound the value a
// Config-side KeyVal may hold.
type RestrictionType int

const (
	// RestrictionEntryMin is the kind SetEntryBounds assigns when min
	// and max differ. It bounds the number of instances of a given name
	// a parent may contain to restrictionMin..restrictionMax
	// (exclusive). A max of zero means unbounded (spec.md Open
	// Questions, decided in DESIGN.md).
	RestrictionEntryMin RestrictionType = iota
	// RestrictionEntryMax is the kind SetEntryBounds assigns when min
	// and max are equal; it enforces the same min and max bounds as
	// RestrictionEntryMin (exclusive).
	RestrictionEntryMax
	// RestrictionValueNumeric bounds a numeric KeyVal's value between
	// restrictionMin and restrictionMax, inclusive (inclusive).
	RestrictionValueNumeric
	// RestrictionValueEnum restricts a KeyVal's value to one of a
	// fixed set of enum tokens (inclusive).
	RestrictionValueEnum
)

func (r RestrictionType) String() string {
	switch r {
	case RestrictionEntryMin:
		return "ENTRY_MIN"
	case RestrictionEntryMax:
		return "ENTRY_MAX"
	case RestrictionValueNumeric:
		return "VALUE_NUMERIC"
	case RestrictionValueEnum:
		return "VALUE_ENUM"
	default:
		return "UNKNOWN_RESTRICTION"
	}
}

// isExclusive reports whether r constrains cardinality (checked against a
// Section's children) as opposed to a single KeyVal's value.
func (r RestrictionType) isExclusive() bool {
	return r == RestrictionEntryMin || r == RestrictionEntryMax
}

// Restriction wraps a Context of VariantRestriction. Restrictions are
// mold-side only: they describe a constraint a Config-side sibling must
// satisfy, never carrying a Config counterpart of their own (spec.md §3).
type Restriction struct{ ctx *Context }

// BeginRestriction starts constructing a new Restriction attached to a
// mold-side Section or Keyval parent.
func BeginRestriction(parent *Context) (*Restriction, error) {
	ctx, err := begin(parent, VariantRestriction)
	if err != nil {
		return nil, err
	}
	return &Restriction{ctx: ctx}, nil
}

// SetEntryBounds configures this Restriction as an exclusive cardinality
// bound: min <= count(name) <= max. A max of 0 means unbounded.
func (r *Restriction) SetEntryBounds(min, max int64) error {
	if err := r.ctx.checkUsable(); err != nil {
		return err
	}
	if min < 0 || max < 0 {
		return wrapf(StatusInvalidArgument, "restriction bounds must be non-negative")
	}
	if max != 0 && min > max {
		return wrapf(StatusInvalidArgument, "restriction min %d exceeds max %d", min, max)
	}
	r.ctx.restrictionIsEntry = true
	r.ctx.restrictionMin = float64(min)
	r.ctx.restrictionMax = float64(max)
	if min == max {
		r.ctx.restrictionType = RestrictionEntryMax
	} else {
		r.ctx.restrictionType = RestrictionEntryMin
	}
	return nil
}

// SetNumericBounds configures this Restriction as an inclusive numeric
// value bound.
func (r *Restriction) SetNumericBounds(min, max float64) error {
	if err := r.ctx.checkUsable(); err != nil {
		return err
	}
	if min > max {
		return wrapf(StatusInvalidArgument, "restriction min %v exceeds max %v", min, max)
	}
	r.ctx.restrictionType = RestrictionValueNumeric
	r.ctx.restrictionMin = min
	r.ctx.restrictionMax = max
	return nil
}

// SetEnumValues configures this Restriction as an inclusive enum
// membership check.
func (r *Restriction) SetEnumValues(tokens []string) error {
	if err := r.ctx.checkUsable(); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return wrapf(StatusInvalidArgument, "enum restriction needs at least one token")
	}
	r.ctx.restrictionType = RestrictionValueEnum
	r.ctx.restrictionEnum = append([]string(nil), tokens...)
	return nil
}

// SetIntroduced sets the Mold version this restriction takes effect from.
func (r *Restriction) SetIntroduced(v Version) error {
	if err := r.ctx.checkUsable(); err != nil {
		return err
	}
	r.ctx.introduced = v
	return nil
}

// SetDeprecated sets the Mold version this restriction stops applying
// at (spec.md §3, §4.5): the restriction is in effect for versions V
// with introduced <= V < deprecated. Optional — a restriction with no
// deprecated version remains in effect for every version at or after
// its introduced version.
func (r *Restriction) SetDeprecated(v Version) error {
	if err := r.ctx.checkUsable(); err != nil {
		return err
	}
	r.ctx.deprecated = v
	r.ctx.hasDeprecated = true
	return nil
}

// Introduced returns the version this restriction takes effect from.
func (r *Restriction) Introduced() Version { return r.ctx.introduced }

// Deprecated returns the version this restriction stops applying at,
// and whether one was set.
func (r *Restriction) Deprecated() (Version, bool) { return r.ctx.deprecated, r.ctx.hasDeprecated }

// Finalize completes construction and attaches the Restriction to its
// parent's restriction queue.
func (r *Restriction) Finalize() error {
	ctx := r.ctx
	err := finalize(&ctx)
	r.ctx = ctx
	return err
}

func (c *Context) finalizeRestriction() error {
	if c.parent == nil {
		return wrapf(StatusInvalidArgument, "restriction requires a parent Section or Keyval")
	}
	if c.hasDeprecated && !c.introduced.Less(c.deprecated) {
		return wrapf(StatusInvalidArgument, "restriction introduced %s must precede deprecated %s", c.introduced, c.deprecated)
	}
	switch c.restrictionType {
	case RestrictionValueNumeric, RestrictionValueEnum:
		if c.parent.variant != VariantKeyval {
			return wrapf(StatusWrongContext, "value restriction requires a Keyval parent")
		}
		if c.restrictionType == RestrictionValueEnum && len(c.restrictionEnum) == 0 {
			return wrapf(StatusInvalidArgument, "enum restriction has no tokens")
		}
		if !restrictionCompatibleWithValueType(c.restrictionType, c.parent.valueType) {
			return wrapf(StatusWrongValueType, "%s restriction is illegal on a %s keyval", c.restrictionType, c.parent.valueType)
		}
	case RestrictionEntryMin, RestrictionEntryMax:
		if c.parent.variant != VariantSection && c.parent.variant != VariantKeyval {
			return wrapf(StatusWrongContext, "entry-count restriction requires a Section or Keyval parent")
		}
	}
	return nil
}

// restrictionCompatibleWithValueType reports whether a value-restriction
// kind may legally constrain a keyval of the given value type (spec.md
// §4.3, §4.5: "String and Boolean keyvals have no exclusive[/value]
// restrictions" — mirrored from original_source/src/validate.c
// validate_exclusive_restrictions, which only handles INTEGER/FLOAT
// numerically and treats STRING/BOOLEAN as "nothing to do").
func restrictionCompatibleWithValueType(kind RestrictionType, vt ValueType) bool {
	switch kind {
	case RestrictionValueNumeric:
		return vt == ValueTypeInteger || vt == ValueTypeFloat
	case RestrictionValueEnum:
		return vt == ValueTypeEnum
	default:
		return true
	}
}

// checkValue reports whether val satisfies an inclusive value
// restriction. Only meaningful for RestrictionValueNumeric/Enum.
func (r *Context) checkValue(val Value) bool {
	switch r.restrictionType {
	case RestrictionValueNumeric:
		switch val.Type() {
		case ValueTypeInteger:
			n, _ := val.Integer()
			return float64(n) >= r.restrictionMin && float64(n) <= r.restrictionMax
		case ValueTypeFloat:
			f, _ := val.Float()
			return f >= r.restrictionMin && f <= r.restrictionMax
		default:
			return true
		}
	case RestrictionValueEnum:
		token, err := val.String()
		if err != nil {
			return true
		}
		for _, allowed := range r.restrictionEnum {
			if allowed == token {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// checkEntryCount reports whether count satisfies an exclusive
// cardinality restriction.
func (r *Context) checkEntryCount(count int) bool {
	if float64(count) < r.restrictionMin {
		return false
	}
	if r.restrictionMax != 0 && float64(count) > r.restrictionMax {
		return false
	}
	return true
}

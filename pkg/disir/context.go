package disir

// Variant tags the concrete kind of node a Context wraps (spec.md §3).
// Every Context carries exactly one Variant for its lifetime; it is set at
// begin and never changes.
type Variant int

const (
	VariantMold Variant = iota
	VariantConfig
	VariantSection
	VariantKeyval
	VariantDefault
	VariantDocumentation
	VariantRestriction
	VariantFreeText
)

func (v Variant) String() string {
	switch v {
	case VariantMold:
		return "MOLD"
	case VariantConfig:
		return "CONFIG"
	case VariantSection:
		return "SECTION"
	case VariantKeyval:
		return "KEYVAL"
	case VariantDefault:
		return "DEFAULT"
	case VariantDocumentation:
		return "DOCUMENTATION"
	case VariantRestriction:
		return "RESTRICTION"
	case VariantFreeText:
		return "FREE_TEXT"
	default:
		return "UNKNOWN_VARIANT"
	}
}

// state is a small bitflag set tracking where in its lifecycle a Context
// currently sits (spec.md §4.3). A freshly begun Context is Constructing;
// a successful finalize moves it to Finalized; destroy moves it to
// Destroyed. Invalid is set independently of the other three and sticks
// once raised by a fatal error, regardless of what state the node was in
// when it was raised.
type state uint8

const (
	stateConstructing state = 1 << iota
	stateFinalized
	stateDestroyed
	stateInvalid
)

func (s state) has(flag state) bool { return s&flag != 0 }

// containerVariants is the set of node kinds that hold named children in
// an elementStorage rather than a scalar payload.
func (v Variant) isContainer() bool {
	return v == VariantMold || v == VariantConfig || v == VariantSection
}

// Context is disir's single polymorphic node type (spec.md §3). Every
// Mold, Config, Section, Keyval, Default, Documentation, Restriction and
// FreeText in a tree is a *Context distinguished by its Variant, mirroring
// the tagged-union struct of the original C implementation
// (original_source/include/disir/context.h) but as a flat Go struct with
// variant-specific optional fields rather than a union of payload
// pointers, since Go has no native union and per-variant wrapper types
// would only add indirection without adding safety — every field access
// is already guarded by a Variant check at the API boundary (the public
// wrapper types in mold.go, config.go, section.go, keyval.go and their
// siblings), exactly where the C implementation guards it with
// CONTEXT_TYPE_CHECK macros.
type Context struct {
	variant Variant
	st      state

	// parent is the non-owning, weak back-pointer used for SetName
	// collision checks and error-message context. root is self for a
	// Mold/Config root, or the owning root otherwise.
	parent *Context
	root   *Context

	name string

	// refcount tracks borrowed references beyond the one structural
	// reference a parent's elementStorage (or sub-queue) holds on this
	// node once attached. newContext starts it at 1, representing the
	// constructing caller's own handle; finalize reinterprets that same
	// unit as "held by the attachment point" without incrementing it
	// (spec.md §3, §9: "implementations may coalesce [refcount and
	// ownership] by ensuring... query handles borrow rather than
	// refcount"). get/find increment it for each handle additionally
	// handed to a caller; putcontext/destroy decrement it.
	refcount int32

	// elements holds named children for container variants (Mold,
	// Config, Section).
	elements *elementStorage

	// valueType/value hold a Keyval's declared type (both Mold and
	// Config side) and, Config-side only, its concrete Value.
	valueType ValueType
	value     Value

	// documentation holds attached Documentation children, oldest
	// introduced version first. Valid on the Mold root, Section and
	// Keyval.
	documentation []*Context

	// restrictions holds attached Restriction children. Valid on
	// Section and Keyval (mold side).
	restrictions []*Context

	// defaults holds attached Default children sorted by ascending
	// introduced version. Valid on Keyval (mold side) only.
	defaults []*Context

	// freeTexts holds attached FreeText children, insertion order.
	// Valid on any Config-side node.
	freeTexts []*Context

	// introduced is the version window a Default/Documentation/
	// Restriction entry was introduced at.
	introduced Version

	// deprecated, when hasDeprecated is set, is the version at which a
	// Restriction entry stops applying (spec.md §3 "each restriction
	// itself carries an introduced/deprecated version window"). Unused
	// on Default/Documentation, which have no deprecated window.
	deprecated    Version
	hasDeprecated bool

	// restrictionType/restrictionMin/restrictionMax/restrictionEnum
	// describe a Restriction node's concrete check (restriction.go).
	restrictionType RestrictionType
	restrictionMin  float64
	restrictionMax  float64
	restrictionEnum []string
	restrictionIsEntry bool // true for RestrictionEntryMin/RestrictionEntryMax (cardinality), false for value restrictions

	// freeText holds a FreeText node's unstructured string payload.
	freeText string

	// version is the Mold/Config root's own semantic version.
	version Version

	// moldRoot is set on a Config root context to point at the Mold
	// root it currently resolves against (query.go findMoldEquivalent).
	// Nil on every other variant and on an unattached Config.
	moldRoot *Context

	// moldEquivalent is a Config-side Section/Keyval's cached
	// mold_equivalent back-reference (spec.md §3), resolved and stored
	// by setName the moment the node is named against an attached
	// Mold. A non-owning weak reference, same as moldRoot — never
	// incref'd, never released.
	moldEquivalent *Context

	// fatalMsg carries the message attached by the most recent fatal
	// error raised against this node (getErrorMessage / fatalError).
	fatalMsg string
}

// newContext allocates a bare Context in the Constructing state with a
// single live reference, owned by whichever caller holds the returned
// pointer.
func newContext(variant Variant) *Context {
	ctx := &Context{variant: variant, st: stateConstructing, refcount: 1}
	if variant.isContainer() {
		ctx.elements = newElementStorage()
	}
	return ctx
}

// begin starts construction of a new child Context of the given variant
// under parent (nil for a fresh Mold/Config root). It is the Go
// equivalent of dc_begin (spec.md §4.3).
func begin(parent *Context, variant Variant) (*Context, error) {
	if parent != nil {
		if err := parent.checkUsable(); err != nil {
			return nil, err
		}
	}

	ctx := newContext(variant)
	ctx.parent = parent
	if parent != nil {
		ctx.root = parent.root
	} else {
		ctx.root = ctx
	}
	return ctx, nil
}

// checkUsable returns StatusContextInWrongState if destroyed, or
// StatusInvalidContext if a fatal error was previously raised against
// this node.
func (c *Context) checkUsable() error {
	if c == nil {
		return wrapf(StatusInvalidArgument, "nil context")
	}
	if c.st.has(stateDestroyed) {
		return wrapf(StatusContextInWrongState, "context already destroyed")
	}
	if c.st.has(stateInvalid) {
		return wrapf(StatusInvalidContext, "context was invalidated: %s", c.fatalMsg)
	}
	return nil
}

// finalize validates ctx against variant-specific construction
// invariants, attaches it to its parent's storage (or sub-queue), and
// moves it from Constructing to Finalized. On the caller's side, per
// disir convention, a successfully finalized handle must be treated as
// consumed: the caller does not separately release it (spec.md §4.3 —
// "We do not decref a context's refcount on finalize; the caller's
// handle is simply abandoned, not an outstanding reference").
func finalize(ctxp **Context) error {
	ctx := *ctxp
	if err := ctx.checkUsable(); err != nil {
		return err
	}
	if !ctx.st.has(stateConstructing) {
		return wrapf(StatusContextInWrongState, "context is not under construction")
	}

	if err := ctx.finalizeChecks(); err != nil {
		ctx.fatalError(err)
		return err
	}

	ctx.st = stateFinalized
	if err := ctx.attach(); err != nil {
		return err
	}

	// Only null the caller's handle when ctx was actually absorbed into
	// a parent's attachment point. A root (Mold/Config, ctx.parent ==
	// nil) has nowhere else to live: its wrapper struct is the
	// long-term owner, so the handle must survive finalize.
	if ctx.parent != nil {
		*ctxp = nil
	}
	return nil
}

// finalizeChecks dispatches to variant-specific construction invariants.
// Populated fully once mold.go/config.go/section.go/keyval.go/default.go
// /documentation.go/restriction.go/freetext.go are loaded; see each
// file's finalizeX method.
func (c *Context) finalizeChecks() error {
	switch c.variant {
	case VariantMold:
		return c.finalizeMold()
	case VariantConfig:
		return c.finalizeConfig()
	case VariantSection:
		return c.finalizeSection()
	case VariantKeyval:
		return c.finalizeKeyval()
	case VariantDefault:
		return c.finalizeDefault()
	case VariantDocumentation:
		return c.finalizeDocumentation()
	case VariantRestriction:
		return c.finalizeRestriction()
	case VariantFreeText:
		return c.finalizeFreeText()
	default:
		return wrapf(StatusInternalError, "unknown variant %d", c.variant)
	}
}

// attach registers a finalized ctx with whatever its parent uses to track
// finalized children: elementStorage for a named Section/Keyval under a
// container, or one of the unnamed sub-queues for Default/Documentation/
// Restriction. Roots (ctx.parent == nil) have nothing to attach to.
func (c *Context) attach() error {
	if c.parent == nil {
		return nil
	}
	switch c.variant {
	case VariantSection, VariantKeyval:
		if c.name == "" {
			return wrapf(StatusInvalidArgument, "%s finalized with no name", c.variant)
		}
		return c.parent.elements.add(c.name, c)
	case VariantDefault:
		c.parent.defaults = append(c.parent.defaults, c)
		sortByIntroduced(c.parent.defaults)
	case VariantDocumentation:
		c.parent.documentation = append(c.parent.documentation, c)
		sortByIntroduced(c.parent.documentation)
	case VariantRestriction:
		c.parent.restrictions = append(c.parent.restrictions, c)
	case VariantFreeText:
		c.parent.freeTexts = append(c.parent.freeTexts, c)
	default:
		return wrapf(StatusInternalError, "variant %s has no attach point", c.variant)
	}
	return nil
}

func sortByIntroduced(list []*Context) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j-1].introduced.Compare(list[j].introduced) > 0; j-- {
			list[j-1], list[j] = list[j], list[j-1]
		}
	}
}

// destroy releases ctx's reference. If the refcount reaches zero, ctx is
// detached from its parent (if attached) and every structurally-owned
// child is recursively released in turn (spec.md §4.3, §9 invariant:
// "destroy eventually results in the full subtree reaching refcount
// zero"). Safe to call in any state; repeated calls past the first are
// StatusContextInWrongState.
func (c *Context) destroy() error {
	if c == nil {
		return nil
	}
	if c.st.has(stateDestroyed) && c.refcount <= 0 {
		return wrapf(StatusContextInWrongState, "context already destroyed")
	}
	return c.releaseRef()
}

// putcontext releases a reference obtained from a query op (get/find). It
// is StatusContextInWrongState if ctx is still under construction — a
// constructing handle was never "handed out" by a query and must be
// finalized or destroyed instead.
func (c *Context) putcontext() error {
	if c.st.has(stateConstructing) {
		return wrapf(StatusContextInWrongState, "cannot putcontext a context still under construction")
	}
	return c.releaseRef()
}

func (c *Context) incref() { c.refcount++ }

func (c *Context) releaseRef() error {
	c.refcount--
	if c.refcount > 0 {
		return nil
	}

	c.st |= stateDestroyed

	if c.elements != nil {
		c.elements.destroyAll()
	}
	for _, child := range append([]*Context(nil), c.defaults...) {
		_ = child.releaseRef()
	}
	for _, child := range append([]*Context(nil), c.documentation...) {
		_ = child.releaseRef()
	}
	for _, child := range append([]*Context(nil), c.restrictions...) {
		_ = child.releaseRef()
	}
	for _, child := range append([]*Context(nil), c.freeTexts...) {
		_ = child.releaseRef()
	}

	if c.parent != nil {
		switch c.variant {
		case VariantSection, VariantKeyval:
			_ = c.parent.elements.remove(c.name, c)
		case VariantDefault:
			c.parent.defaults = removeContext(c.parent.defaults, c)
		case VariantDocumentation:
			c.parent.documentation = removeContext(c.parent.documentation, c)
		case VariantRestriction:
			c.parent.restrictions = removeContext(c.parent.restrictions, c)
		case VariantFreeText:
			c.parent.freeTexts = removeContext(c.parent.freeTexts, c)
		}
	}

	return nil
}

func removeContext(list []*Context, target *Context) []*Context {
	for i, ctx := range list {
		if ctx == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// fatalError marks ctx permanently Invalid, recording msg for later
// retrieval via getErrorMessage. A fatal error is not recoverable: every
// subsequent operation on ctx other than destroy/putcontext fails with
// StatusInvalidContext.
func (c *Context) fatalError(err error) {
	c.st |= stateInvalid
	if err != nil {
		c.fatalMsg = err.Error()
	}
}

// getErrorMessage returns the message attached by the most recent fatal
// error, or "" if none was raised.
func (c *Context) getErrorMessage() string { return c.fatalMsg }

// setName assigns ctx's name. Only legal on Section and Keyval contexts
// still under construction; StatusNoCanDo on any other variant.
//
// When ctx sits in a Config tree with a Mold actually attached
// (BeginConfig/AttachMold), naming it also resolves and caches its
// mold_equivalent (spec.md §4.3 set_name: "must match a Mold child of
// equal variant"): StatusNotExist if no such mold child exists,
// StatusWrongContext if one exists but is a different variant. A
// Config built with no Mold at all skips resolution entirely — it
// stays soft-invalid until Validate reports MoldMissing, rather than
// rejecting the name outright.
func (c *Context) setName(name string) error {
	if c.variant != VariantSection && c.variant != VariantKeyval {
		return wrapf(StatusNoCanDo, "cannot set a name on a %s", c.variant)
	}
	if err := c.checkUsable(); err != nil {
		return err
	}
	if !c.st.has(stateConstructing) {
		return wrapf(StatusContextInWrongState, "cannot rename a finalized context")
	}
	if name == "" {
		return wrapf(StatusInvalidArgument, "name must not be empty")
	}

	if c.root.variant == VariantConfig && c.root.moldRoot != nil {
		var moldParent *Context
		if c.parent == c.root {
			moldParent = c.root.moldRoot
		} else {
			moldParent = c.parent.moldEquivalent
		}
		equiv, err := resolveMoldChild(moldParent, name)
		if err != nil {
			return err
		}
		if equiv.variant != c.variant {
			return wrapf(StatusWrongContext, "%q is a %s in the mold, not a %s", name, equiv.variant, c.variant)
		}
		c.moldEquivalent = equiv
	}

	c.name = name
	return nil
}

// resolveMoldChild looks up the mold-side Section/Keyval named name
// directly under moldParent — the already-resolved mold equivalent of
// ctx's own parent, populated incrementally as each ancestor was named
// in turn. StatusNotExist if moldParent has no such child (or is nil,
// meaning an ancestor never resolved one of its own).
func resolveMoldChild(moldParent *Context, name string) (*Context, error) {
	if moldParent == nil || moldParent.elements == nil {
		return nil, wrapf(StatusNotExist, "no mold equivalent parent to resolve %q against", name)
	}
	child, ok := moldParent.elements.first(name)
	if !ok {
		return nil, wrapf(StatusNotExist, "no mold child named %q", name)
	}
	return child, nil
}

// getName returns ctx's name, or "" for an unnamed variant.
func (c *Context) getName() string { return c.name }

// Type returns ctx's Variant, exposed across the public API via each
// wrapper type's Variant-like accessor (e.g. Keyval.ValueType).
func (c *Context) Type() Variant { return c.variant }

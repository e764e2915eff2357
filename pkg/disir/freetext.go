package disir

// FreeText wraps a Context of VariantFreeText: an unstructured string
// payload attached to a Config-side node, used for operator notes and
// free-form annotations that carry no schema meaning of their own
// (supplemented from original_source per SPEC_FULL.md Section C — the
// distilled spec.md does not name this node, but the original C
// implementation's dx_free_text_context family shows it as a first-class
// variant alongside Documentation).
type FreeText struct{ ctx *Context }

// BeginFreeText starts constructing a new FreeText attached to any
// Config-side node (Config root, Section or Keyval).
func BeginFreeText(parent *Context) (*FreeText, error) {
	ctx, err := begin(parent, VariantFreeText)
	if err != nil {
		return nil, err
	}
	return &FreeText{ctx: ctx}, nil
}

// SetText sets the free text body.
func (f *FreeText) SetText(text string) error {
	if err := f.ctx.checkUsable(); err != nil {
		return err
	}
	f.ctx.freeText = text
	return nil
}

// Text returns the free text body.
func (f *FreeText) Text() string { return f.ctx.freeText }

// Finalize completes construction and appends the FreeText to its
// parent's free-text list, kept in insertion order and read back via
// Context.FreeTexts.
func (f *FreeText) Finalize() error {
	ctx := f.ctx
	err := finalize(&ctx)
	f.ctx = ctx
	return err
}

func (c *Context) finalizeFreeText() error {
	if c.parent == nil {
		return wrapf(StatusInvalidArgument, "free text requires a parent")
	}
	return nil
}

package disir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleMold(t *testing.T) *Mold {
	t.Helper()
	mold, err := BeginMold()
	require.NoError(t, err)

	kv, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, kv.SetName("listen_addr"))
	require.NoError(t, kv.SetValueType(ValueTypeString))
	def, err := kv.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, def.SetValue(NewStringValue(":8080")))
	require.NoError(t, def.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, def.Finalize())
	require.NoError(t, kv.Finalize())

	sect, err := mold.BeginSection()
	require.NoError(t, err)
	require.NoError(t, sect.SetName("limits"))
	maxConn, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, maxConn.SetName("max_connections"))
	require.NoError(t, maxConn.SetValueType(ValueTypeInteger))
	maxConnDef, err := maxConn.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, maxConnDef.SetValue(NewIntegerValue(100)))
	require.NoError(t, maxConnDef.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, maxConnDef.Finalize())
	require.NoError(t, maxConn.Finalize())
	require.NoError(t, sect.Finalize())

	require.NoError(t, mold.Finalize())
	return mold
}

func TestBeginFinalizeAttachesToParent(t *testing.T) {
	mold := buildSimpleMold(t)

	found, err := findElement(mold.ctx, "listen_addr")
	require.NoError(t, err)
	assert.Equal(t, VariantKeyval, found.variant)
	require.NoError(t, found.putcontext())

	_, err = findElement(mold.ctx, "does_not_exist")
	require.ErrorIs(t, err, StatusNotExist)
}

func TestFinalizeAllowsDuplicateNames(t *testing.T) {
	mold, err := BeginMold()
	require.NoError(t, err)

	kv1, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, kv1.SetName("dup"))
	require.NoError(t, kv1.SetValueType(ValueTypeString))
	def1, err := kv1.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, def1.SetValue(NewStringValue("a")))
	require.NoError(t, def1.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, def1.Finalize())
	require.NoError(t, kv1.Finalize())

	kv2, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, kv2.SetName("dup"))
	require.NoError(t, kv2.SetValueType(ValueTypeString))
	def2, err := kv2.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, def2.SetValue(NewStringValue("b")))
	require.NoError(t, def2.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, def2.Finalize())
	require.NoError(t, kv2.Finalize())

	// Duplicate names are legal in general (repeatable children); the
	// real StatusExists case is the same (name, ctx) pointer pair,
	// which can't arise through the public API. Confirm both attached.
	kids, err := getElements(mold.ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, kids, 2)
	for _, k := range kids {
		require.NoError(t, k.putcontext())
	}
}

func TestPutcontextRejectsConstructingHandle(t *testing.T) {
	mold, err := BeginMold()
	require.NoError(t, err)
	kv, err := mold.BeginKeyval()
	require.NoError(t, err)

	err = kv.ctx.putcontext()
	assert.ErrorIs(t, err, StatusContextInWrongState)
}

func TestDoubleDestroyFails(t *testing.T) {
	mold, err := BeginMold()
	require.NoError(t, err)

	require.NoError(t, mold.Destroy())
	err = mold.Destroy()
	assert.ErrorIs(t, err, StatusContextInWrongState)
}

func TestQueryHandleRefcountRoundtrips(t *testing.T) {
	mold := buildSimpleMold(t)

	h1, err := findElement(mold.ctx, "listen_addr")
	require.NoError(t, err)
	h2, err := findElement(mold.ctx, "listen_addr")
	require.NoError(t, err)
	assert.Same(t, h1, h2)
	assert.EqualValues(t, 3, h1.refcount) // 1 structural + 2 borrowed

	require.NoError(t, h1.putcontext())
	require.NoError(t, h2.putcontext())
	assert.EqualValues(t, 1, h1.refcount)

	require.NoError(t, mold.Destroy())
}

func TestDestroyCascadesToChildren(t *testing.T) {
	mold := buildSimpleMold(t)

	sect, err := findElement(mold.ctx, "limits")
	require.NoError(t, err)
	kv, err := findElement(sect, "max_connections")
	require.NoError(t, err)

	require.NoError(t, mold.Destroy())

	// sect was borrowed (refcount bumped by findElement) before destroy
	// ran, so it survives the cascade at refcount 1 — exercising the
	// "outstanding external reference" invariant — and because it
	// survives, its own cascade into kv never fires: kv still carries
	// both its structural reference and the caller's borrow.
	assert.EqualValues(t, 1, sect.refcount)
	assert.EqualValues(t, 2, kv.refcount)

	require.NoError(t, sect.putcontext())
	assert.EqualValues(t, 1, kv.refcount)

	require.NoError(t, kv.putcontext())
}

func TestFatalErrorInvalidatesContext(t *testing.T) {
	mold, err := BeginMold()
	require.NoError(t, err)
	kv, err := mold.BeginKeyval()
	require.NoError(t, err)

	kv.ctx.fatalError(wrapf(StatusRestrictionViolated, "boom"))

	err = kv.SetName("x")
	assert.ErrorIs(t, err, StatusInvalidContext)
	assert.Contains(t, kv.ctx.getErrorMessage(), "boom")
}

func TestSetNameWrongVariant(t *testing.T) {
	mold, err := BeginMold()
	require.NoError(t, err)

	kv, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, kv.SetValueType(ValueTypeString))
	require.NoError(t, kv.SetName("n"))

	defBuilder, err := kv.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, defBuilder.SetValue(NewStringValue("x")))
	err = defBuilder.ctx.setName("nope")
	assert.ErrorIs(t, err, StatusNoCanDo)

	require.NoError(t, defBuilder.Finalize())
	require.NoError(t, kv.Finalize())
}

package wiredoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspt-johs/disir-go/pkg/disir"
)

func buildSampleMold(t *testing.T) *disir.Mold {
	t.Helper()
	mold, err := disir.BeginMold()
	require.NoError(t, err)

	doc, err := mold.BeginDocumentation()
	require.NoError(t, err)
	require.NoError(t, doc.SetText("root level service configuration"))
	require.NoError(t, doc.SetIntroduced(disir.Version{Major: 1, Minor: 0, Patch: 0}))
	require.NoError(t, doc.Finalize())

	port, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, port.SetName("port"))
	require.NoError(t, port.SetValueType(disir.ValueTypeInteger))
	def1, err := port.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, def1.SetValue(disir.NewIntegerValue(8080)))
	require.NoError(t, def1.SetIntroduced(disir.Version{Major: 1, Minor: 0, Patch: 0}))
	require.NoError(t, def1.Finalize())
	def2, err := port.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, def2.SetValue(disir.NewIntegerValue(9090)))
	require.NoError(t, def2.SetIntroduced(disir.Version{Major: 1, Minor: 2, Patch: 0}))
	require.NoError(t, def2.Finalize())
	restriction, err := port.BeginRestriction()
	require.NoError(t, err)
	require.NoError(t, restriction.SetNumericBounds(1024, 65535))
	require.NoError(t, restriction.SetIntroduced(disir.Version{Major: 1, Minor: 0, Patch: 0}))
	require.NoError(t, restriction.Finalize())
	require.NoError(t, port.Finalize())

	limits, err := mold.BeginSection()
	require.NoError(t, err)
	require.NoError(t, limits.SetName("limits"))
	host, err := limits.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, host.SetName("host"))
	require.NoError(t, host.SetValueType(disir.ValueTypeString))
	hostDef, err := host.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, hostDef.SetValue(disir.NewStringValue("0.0.0.0")))
	require.NoError(t, hostDef.SetIntroduced(disir.UnspecifiedVersion))
	require.NoError(t, hostDef.Finalize())
	cardinality, err := limits.BeginRestriction()
	require.NoError(t, err)
	require.NoError(t, cardinality.SetEntryBounds(1, 3))
	require.NoError(t, cardinality.SetIntroduced(disir.UnspecifiedVersion))
	require.NoError(t, cardinality.Finalize())
	require.NoError(t, host.Finalize())
	require.NoError(t, limits.Finalize())

	require.NoError(t, mold.Finalize())
	return mold
}

func TestBuildMold_RoundTripsThroughExportMold(t *testing.T) {
	mold := buildSampleMold(t)

	doc, err := BuildMold(mold)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", doc.Version)
	require.Len(t, doc.Keyvals, 1)
	assert.Equal(t, "port", doc.Keyvals[0].Name)
	assert.Equal(t, "INTEGER", doc.Keyvals[0].Type)
	require.Len(t, doc.Keyvals[0].Defaults, 2)
	assert.Equal(t, "9090", doc.Keyvals[0].Defaults[1].Value)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "limits", doc.Sections[0].Name)
	require.Len(t, doc.Sections[0].Restrictions, 1)
	assert.Equal(t, RestrictionKindEntryMin, doc.Sections[0].Restrictions[0].Kind)

	rebuilt, err := ExportMold(doc)
	require.NoError(t, err)
	assert.Equal(t, mold.Version(), rebuilt.Version())

	reexported, err := BuildMold(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, doc, reexported)
}

func TestBuildConfig_RoundTripsThroughExportConfig(t *testing.T) {
	mold := buildSampleMold(t)

	cfg, err := disir.BeginConfig(mold)
	require.NoError(t, err)
	require.NoError(t, cfg.SetVersion(disir.Version{Major: 1, Minor: 2, Patch: 0}))

	portKV, err := cfg.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, portKV.SetName("port"))
	require.NoError(t, portKV.SetValue(disir.NewIntegerValue(9091)))
	require.NoError(t, portKV.Finalize())

	limitsSec, err := cfg.BeginSection()
	require.NoError(t, err)
	require.NoError(t, limitsSec.SetName("limits"))
	hostKV, err := limitsSec.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, hostKV.SetName("host"))
	require.NoError(t, hostKV.SetValue(disir.NewStringValue("127.0.0.1")))
	require.NoError(t, hostKV.Finalize())
	require.NoError(t, limitsSec.Finalize())

	require.NoError(t, cfg.Finalize())

	doc, err := BuildConfig(cfg)
	require.NoError(t, err)
	require.Len(t, doc.Keyvals, 1)
	require.NotNil(t, doc.Keyvals[0].Value)
	assert.Equal(t, "9091", *doc.Keyvals[0].Value)
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Keyvals, 1)
	assert.Equal(t, "127.0.0.1", *doc.Sections[0].Keyvals[0].Value)

	rebuilt, err := ExportConfig(doc, mold)
	require.NoError(t, err)
	assert.Equal(t, cfg.Version(), rebuilt.Version())

	reexported, err := BuildConfig(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, doc, reexported)
}

func TestExportMold_UnknownValueTypeFails(t *testing.T) {
	doc := &Document{
		Keyvals: []Keyval{{Name: "x", Type: "BOGUS"}},
	}
	_, err := ExportMold(doc)
	assert.Error(t, err)
}

func TestExportMold_UnknownRestrictionKindFails(t *testing.T) {
	doc := &Document{
		Sections: []Section{{
			Name:         "s",
			Restrictions: []Restriction{{Kind: "not_a_kind"}},
		}},
	}
	_, err := ExportMold(doc)
	assert.Error(t, err)
}

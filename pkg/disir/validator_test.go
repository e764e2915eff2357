package disir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildAddressMold builds a small mold: a string keyval with a default,
// and a section with a cardinality-restricted, enum-restricted keyval.
func buildAddressMold(t *testing.T) *Mold {
	t.Helper()
	mold, err := BeginMold()
	require.NoError(t, err)

	host, err := mold.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, host.SetName("host"))
	require.NoError(t, host.SetValueType(ValueTypeString))
	hostDef, err := host.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, hostDef.SetValue(NewStringValue("localhost")))
	require.NoError(t, hostDef.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, hostDef.Finalize())
	require.NoError(t, host.Finalize())

	sect, err := mold.BeginSection()
	require.NoError(t, err)
	require.NoError(t, sect.SetName("env"))

	mode, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, mode.SetName("mode"))
	require.NoError(t, mode.SetValueType(ValueTypeEnum))
	restriction, err := mode.BeginRestriction()
	require.NoError(t, err)
	require.NoError(t, restriction.SetEnumValues([]string{"dev", "staging", "prod"}))
	require.NoError(t, restriction.Finalize())
	modeDef, err := mode.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, modeDef.SetValue(NewEnumValue("dev")))
	require.NoError(t, modeDef.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, modeDef.Finalize())
	require.NoError(t, mode.Finalize())

	replica, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, replica.SetName("replica"))
	require.NoError(t, replica.SetValueType(ValueTypeString))
	cardinality, err := replica.BeginRestriction()
	require.NoError(t, err)
	require.NoError(t, cardinality.SetEntryBounds(1, 2))
	require.NoError(t, cardinality.Finalize())
	replicaDef, err := replica.BeginDefault()
	require.NoError(t, err)
	require.NoError(t, replicaDef.SetValue(NewStringValue("r1")))
	require.NoError(t, replicaDef.SetIntroduced(Version{1, 0, 0}))
	require.NoError(t, replicaDef.Finalize())
	require.NoError(t, replica.Finalize())

	require.NoError(t, sect.Finalize())
	require.NoError(t, mold.Finalize())
	return mold
}

func buildValidConfig(t *testing.T, mold *Mold) *Config {
	t.Helper()
	cfg, err := BeginConfig(mold)
	require.NoError(t, err)

	host, err := cfg.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, host.SetName("host"))
	require.NoError(t, host.SetValue(NewStringValue("localhost")))
	require.NoError(t, host.Finalize())

	sect, err := cfg.BeginSection()
	require.NoError(t, err)
	require.NoError(t, sect.SetName("env"))

	mode, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, mode.SetName("mode"))
	require.NoError(t, mode.SetValue(NewEnumValue("prod")))
	require.NoError(t, mode.Finalize())

	for _, name := range []string{"replica-1", "replica-2"} {
		replica, err := sect.BeginKeyval()
		require.NoError(t, err)
		require.NoError(t, replica.SetName("replica"))
		require.NoError(t, replica.SetValue(NewStringValue(name)))
		require.NoError(t, replica.Finalize())
	}

	require.NoError(t, sect.Finalize())
	require.NoError(t, cfg.Finalize())
	return cfg
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	mold := buildAddressMold(t)
	cfg := buildValidConfig(t, mold)

	status, entries := Validate(cfg)
	assert.Equal(t, StatusOK, status)
	assert.Empty(t, entries)
}

func TestValidateRejectsEnumViolation(t *testing.T) {
	mold := buildAddressMold(t)
	cfg, err := BeginConfig(mold)
	require.NoError(t, err)

	sect, err := cfg.BeginSection()
	require.NoError(t, err)
	require.NoError(t, sect.SetName("env"))
	mode, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, mode.SetName("mode"))
	require.NoError(t, mode.SetValue(NewEnumValue("not-a-real-env")))
	require.NoError(t, mode.Finalize())

	replica, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, replica.SetName("replica"))
	require.NoError(t, replica.SetValue(NewStringValue("r1")))
	require.NoError(t, replica.Finalize())
	require.NoError(t, sect.Finalize())

	host, err := cfg.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, host.SetName("host"))
	require.NoError(t, host.SetValue(NewStringValue("localhost")))
	require.NoError(t, host.Finalize())

	require.NoError(t, cfg.Finalize())

	status, entries := Validate(cfg)
	assert.Equal(t, StatusRestrictionViolated, status)
	require.NotEmpty(t, entries)
}

func TestValidateRejectsCardinalityViolation(t *testing.T) {
	mold := buildAddressMold(t)
	cfg, err := BeginConfig(mold)
	require.NoError(t, err)

	host, err := cfg.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, host.SetName("host"))
	require.NoError(t, host.SetValue(NewStringValue("localhost")))
	require.NoError(t, host.Finalize())

	sect, err := cfg.BeginSection()
	require.NoError(t, err)
	require.NoError(t, sect.SetName("env"))
	mode, err := sect.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, mode.SetName("mode"))
	require.NoError(t, mode.SetValue(NewEnumValue("dev")))
	require.NoError(t, mode.Finalize())
	// No replica keyval at all: violates min-1 cardinality.
	require.NoError(t, sect.Finalize())

	require.NoError(t, cfg.Finalize())

	status, entries := Validate(cfg)
	assert.Equal(t, StatusRestrictionViolated, status)
	found := false
	for _, e := range entries {
		if e.Status == StatusRestrictionViolated {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateIsIdempotent(t *testing.T) {
	mold := buildAddressMold(t)
	cfg := buildValidConfig(t, mold)

	status1, entries1 := Validate(cfg)
	status2, entries2 := Validate(cfg)
	assert.Equal(t, status1, status2)
	assert.Equal(t, entries1, entries2)
}

func TestValidateWithoutMoldIsMoldMissing(t *testing.T) {
	cfg, err := BeginConfig(nil)
	require.NoError(t, err)
	kv, err := cfg.BeginKeyval()
	require.NoError(t, err)
	require.NoError(t, kv.SetName("orphan"))
	require.NoError(t, kv.SetValue(NewStringValue("x")))
	require.NoError(t, kv.Finalize())
	require.NoError(t, cfg.Finalize())

	status, entries := Validate(cfg)
	assert.Equal(t, StatusMoldMissing, status)
	require.NotEmpty(t, entries)
	assert.Equal(t, StatusMoldMissing, entries[0].Status)
}

package disir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTypedAccessors(t *testing.T) {
	s := NewStringValue("hello")
	got, err := s.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = s.Integer()
	require.Error(t, err)
	assert.ErrorIs(t, err, StatusWrongValueType)
}

func TestValueFormat(t *testing.T) {
	assert.Equal(t, "42", NewIntegerValue(42).Format())
	assert.Equal(t, "true", NewBooleanValue(true).Format())
	assert.Equal(t, "hello", NewStringValue("hello").Format())
	assert.Equal(t, "prod", NewEnumValue("prod").Format())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NewIntegerValue(7).equal(NewIntegerValue(7)))
	assert.False(t, NewIntegerValue(7).equal(NewIntegerValue(8)))
	assert.False(t, NewIntegerValue(7).equal(NewStringValue("7")))
}

func TestValueTypeString(t *testing.T) {
	assert.Equal(t, "STRING", ValueTypeString.String())
	assert.Equal(t, "UNKNOWN", ValueTypeUnknown.String())
}

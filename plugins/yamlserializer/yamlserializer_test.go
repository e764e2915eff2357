package yamlserializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspt-johs/disir-go/pkg/disir"
)

const sampleMoldYAML = `
version: 1.0.0
keyvals:
  - name: port
    type: INTEGER
    defaults:
      - introduced: 1.0.0
        value: "8080"
`

const sampleConfigYAML = `
version: 1.0.0
keyvals:
  - name: port
    value: "9090"
`

func buildMoldForDecodeTest(t *testing.T) *disir.Mold {
	t.Helper()
	s := New(true)
	mold, err := s.DecodeMold([]byte(sampleMoldYAML))
	require.NoError(t, err)
	return mold
}

func TestSerializer_DecodeMold_Valid(t *testing.T) {
	mold := buildMoldForDecodeTest(t)
	ctx, err := mold.Context().FindElement("port")
	require.NoError(t, err)
	defer ctx.PutContext()
	assert.Equal(t, disir.ValueTypeInteger, ctx.ValueType())
}

func TestSerializer_DecodeConfig_Valid(t *testing.T) {
	mold := buildMoldForDecodeTest(t)
	s := New(true)

	cfg, err := s.DecodeConfig([]byte(sampleConfigYAML), mold)
	require.NoError(t, err)

	ctx, err := cfg.Context().FindElement("port")
	require.NoError(t, err)
	defer ctx.PutContext()
	assert.Equal(t, "9090", ctx.Value().Format())
}

func TestSerializer_EncodeMold_RoundTrips(t *testing.T) {
	mold := buildMoldForDecodeTest(t)
	s := New(true)

	data, err := s.EncodeMold(mold)
	require.NoError(t, err)

	rebuilt, err := s.DecodeMold(data)
	require.NoError(t, err)
	assert.Equal(t, mold.Version(), rebuilt.Version())
}

func TestSerializer_DecodeMold_StrictRejectsUnknownField(t *testing.T) {
	s := New(true)
	_, err := s.DecodeMold([]byte("bogus_top_level_field: true\n"))
	require.Error(t, err)

	var yamlErr *Error
	require.ErrorAs(t, err, &yamlErr)
	assert.NotEmpty(t, yamlErr.Suggestion)
}

func TestSerializer_DecodeMold_SyntaxErrorReportsLocation(t *testing.T) {
	s := New(false)
	_, err := s.DecodeMold([]byte("keyvals:\n  - name: port\n  type: [unterminated\n"))
	require.Error(t, err)

	var yamlErr *Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Greater(t, yamlErr.Location.Line, 0)
}

func TestSerializer_DecodeConfig_TypeMismatchFailsValidation(t *testing.T) {
	mold := buildMoldForDecodeTest(t)
	s := New(true)

	_, err := s.DecodeConfig([]byte("keyvals:\n  - name: port\n    value: \"not-a-number\"\n"), mold)
	require.Error(t, err)
}

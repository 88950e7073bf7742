package codegen

import (
	"strings"
	"testing"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(length int) service.CodeGenerator {
	cfg := &config.Config{}
	cfg.Code.Length = length

	return NewGenerator(cfg)
}

func TestGenerator_Opaque(t *testing.T) {
	g := newTestGenerator(8)

	seen := make(map[string]struct{})
	for range 500 {
		code, err := g.Generate(service.CodeStyleOpaque, 50)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.True(t, g.Matches(service.CodeStyleOpaque, code))
		assert.False(t, strings.ContainsAny(code, "01OI"), code)
		seen[code] = struct{}{}
	}

	// 32^8 possibilities; 500 draws should never collide in practice.
	assert.Len(t, seen, 500)
}

func TestGenerator_OpaqueDefaultLength(t *testing.T) {
	g := newTestGenerator(0)

	code, err := g.Generate(service.CodeStyleOpaque, 1)
	require.NoError(t, err)
	assert.Len(t, code, defaultOpaqueLength)
}

func TestGenerator_Structured(t *testing.T) {
	g := newTestGenerator(8)

	tests := []struct {
		points int64
		suffix string
	}{
		{0, "000"},
		{7, "007"},
		{50, "050"},
		{999, "999"},
	}

	for _, tt := range tests {
		code, err := g.Generate(service.CodeStyleStructured, tt.points)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.True(t, strings.HasSuffix(code, tt.suffix), code)
		assert.True(t, g.Matches(service.CodeStyleStructured, code))
	}
}

func TestGenerator_StructuredRejectsOutOfRange(t *testing.T) {
	g := newTestGenerator(8)

	for _, points := range []int64{-1, 1000} {
		_, err := g.Generate(service.CodeStyleStructured, points)
		assert.ErrorIs(t, err, ErrPointsOutOfRange)
	}
}

func TestGenerator_UnknownStyle(t *testing.T) {
	g := newTestGenerator(8)

	_, err := g.Generate(service.CodeStyle("emoji"), 1)
	assert.Error(t, err)
	assert.False(t, g.Matches(service.CodeStyle("emoji"), "ABCDEFGH"))
}

func TestGenerator_Matches(t *testing.T) {
	g := newTestGenerator(8)

	assert.True(t, g.Matches(service.CodeStyleOpaque, "ABCD2345"))
	assert.False(t, g.Matches(service.CodeStyleOpaque, "ABCD234"))
	assert.False(t, g.Matches(service.CodeStyleOpaque, "ABCD2340"))
	assert.False(t, g.Matches(service.CodeStyleOpaque, "abcd2345"))

	assert.True(t, g.Matches(service.CodeStyleStructured, "QWE050"))
	assert.True(t, g.Matches(service.CodeStyleStructured, "OIO999"))
	assert.False(t, g.Matches(service.CodeStyleStructured, "QW0050"))
	assert.False(t, g.Matches(service.CodeStyleStructured, "QWE05"))
}

// Package codegen mints human-enterable transaction codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	// OpaqueAlphabet excludes 0/O and 1/I so codes survive being read aloud.
	OpaqueAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	structuredLetters   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	structuredPrefixLen = 3
	structuredMaxPoints = 999

	defaultOpaqueLength = 8
)

// ErrPointsOutOfRange is returned when structured codes cannot encode the points.
var ErrPointsOutOfRange = errors.New("points cannot be encoded in a structured code")

type generator struct {
	opaqueLength int
}

// NewGenerator builds the generator from the code section of the config.
func NewGenerator(cfg *config.Config) service.CodeGenerator {
	length := cfg.Code.Length
	if length <= 0 {
		length = defaultOpaqueLength
	}

	return &generator{opaqueLength: length}
}

func (g *generator) Generate(style service.CodeStyle, points int64) (string, error) {
	switch style {
	case service.CodeStyleOpaque:
		return randomString(OpaqueAlphabet, g.opaqueLength)
	case service.CodeStyleStructured:
		if points < 0 || points > structuredMaxPoints {
			return "", errors.Wrapf(ErrPointsOutOfRange, "points %d", points)
		}

		prefix, err := randomString(structuredLetters, structuredPrefixLen)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s%03d", prefix, points), nil
	default:
		return "", errors.Errorf("unknown code style %q", style)
	}
}

func (g *generator) Matches(style service.CodeStyle, code string) bool {
	switch style {
	case service.CodeStyleOpaque:
		return len(code) == g.opaqueLength && allIn(code, OpaqueAlphabet)
	case service.CodeStyleStructured:
		return len(code) == structuredPrefixLen+3 &&
			allIn(code[:structuredPrefixLen], structuredLetters) &&
			allIn(code[structuredPrefixLen:], "0123456789")
	default:
		return false
	}
}

func randomString(alphabet string, n int) (string, error) {
	upper := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", errors.Wrap(err, "failed to draw code character")
		}
		buf[i] = alphabet[idx.Int64()]
	}

	return string(buf), nil
}

func allIn(s, alphabet string) bool {
	for i := range len(s) {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return false
		}
	}

	return true
}

// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// CodeStyle selects the shape of generated transaction codes.
type CodeStyle string

const (
	// CodeStyleOpaque is a fixed-length string over an unambiguous alphabet.
	CodeStyleOpaque CodeStyle = "opaque"
	// CodeStyleStructured is three random letters followed by the zero-padded points.
	CodeStyleStructured CodeStyle = "structured"
)

// CodeGenerator mints candidate transaction codes. It never checks uniqueness;
// the store rejects collisions and the caller retries.
type CodeGenerator interface {
	Generate(style CodeStyle, points int64) (string, error)

	// Matches reports whether code has the shape style produces.
	Matches(style CodeStyle, code string) bool
}

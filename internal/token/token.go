package token

import (
	"stepscan/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a simple attribute literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Integer, Real, String, Enum, Binary:
		return true
	default:
		return false
	}
}

// IsPunct reports whether the token is punctuation.
func (t Token) IsPunct() bool {
	switch t.Kind {
	case LParen, RParen, Comma, Semicolon, Equals, Dollar, Star, Slash:
		return true
	default:
		return false
	}
}

// IsName reports whether the token can name an entity type.
func (t Token) IsName() bool {
	return t.Kind == Keyword || t.Kind == UserKeyword
}

// Is reports whether the token is the keyword text.
func (t Token) Is(keyword string) bool {
	return t.Kind == Keyword && t.Text == keyword
}

package domain

import "strings"

// Kind discriminates artifact types
type Kind string

const (
	KindAura  Kind = "aura"  // Daily aura entry
	KindTarot Kind = "tarot" // Daily tarot draw
	KindRune  Kind = "rune"  // Daily rune draw
)

// ParseDrawKind accepts the draw kinds used in URLs ("runes" is an alias of rune)
func ParseDrawKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tarot":
		return KindTarot, nil
	case "rune", "runes":
		return KindRune, nil
	}
	return "", NewValidationError(CodeUnknownKind, "unknown kind: "+s)
}

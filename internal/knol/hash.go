package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/testdeck/internal/domain"
)

// Normalize concatenates the parts of a card that identify it after cleaning
// each one. It trims whitespace, lowercases, and normalizes line endings.
// Difficulty, image and timestamps are not part of a card's identity.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{
		normalizePart(card.Subject),
		normalizePart(card.Question),
	}
	for _, opt := range card.Options() {
		parts = append(parts, normalizePart(opt))
	}
	parts = append(parts,
		normalizePart(card.CorrectAnswer),
		normalizePart(card.BlankAnswer),
	)

	// Joining with a newline keeps "ab"+"c" and "a"+"bc" apart.
	return strings.Join(parts, "\n")
}

// Fingerprint returns the SHA-256 of the normalized card as a hex string.
func Fingerprint(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}

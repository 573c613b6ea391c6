// Package interpolation reconciles the placeholder tokens of a translated
// string with the tokens of its source string.
package interpolation

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches a brace-delimited placeholder such as {amount}.
var tokenPattern = regexp.MustCompile(`\{[^{}]*\}`)

// MismatchKind classifies a placeholder diagnostic.
type MismatchKind int

const (
	// ExtraTokens means the translation holds more tokens than the source.
	ExtraTokens MismatchKind = iota
	// Unrepaired means a token had no source token at its position and was
	// left as written.
	Unrepaired
)

func (k MismatchKind) String() string {
	switch k {
	case ExtraTokens:
		return "extra_tokens"
	case Unrepaired:
		return "unrepaired_token"
	default:
		return "unknown"
	}
}

// Mismatch describes a placeholder the verifier could not reconcile.
type Mismatch struct {
	Kind MismatchKind
	// Token is the offending token. Empty for ExtraTokens.
	Token string
	// Position is the token's first position in the translation (Unrepaired)
	// or the translated token count (ExtraTokens).
	Position int
	// Expected is the source token count.
	Expected int
}

func (m Mismatch) String() string {
	if m.Kind == ExtraTokens {
		return fmt.Sprintf("%s: %d tokens, source has %d", m.Kind, m.Position, m.Expected)
	}
	return fmt.Sprintf("%s: %s at position %d, source has %d", m.Kind, m.Token, m.Position, m.Expected)
}

// Tokens returns the placeholder tokens of s in order of appearance,
// duplicates included.
func Tokens(s string) []string {
	return tokenPattern.FindAllString(s, -1)
}

// Verify rewrites every token of translated that is not literally a source
// token with the source token at the same position. The position of a token
// is where it first appears in translated, so repeated typos map to the same
// source token. Tokens beyond the source count are kept and reported.
// A source without tokens leaves translated untouched.
func Verify(translated, source string) (string, []Mismatch) {
	sourceTokens := Tokens(source)
	if len(sourceTokens) == 0 {
		return translated, nil
	}

	locs := tokenPattern.FindAllStringIndex(translated, -1)
	if len(locs) == 0 {
		return translated, nil
	}

	known := make(map[string]struct{}, len(sourceTokens))
	for _, t := range sourceTokens {
		known[t] = struct{}{}
	}

	firstSeen := make(map[string]int, len(locs))
	for i, loc := range locs {
		tok := translated[loc[0]:loc[1]]
		if _, ok := firstSeen[tok]; !ok {
			firstSeen[tok] = i
		}
	}

	var mismatches []Mismatch
	if len(locs) > len(sourceTokens) {
		mismatches = append(mismatches, Mismatch{
			Kind:     ExtraTokens,
			Position: len(locs),
			Expected: len(sourceTokens),
		})
	}

	reported := make(map[string]struct{})
	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		tok := translated[loc[0]:loc[1]]
		if _, ok := known[tok]; ok {
			continue
		}

		pos := firstSeen[tok]
		if pos >= len(sourceTokens) {
			if _, dup := reported[tok]; !dup {
				reported[tok] = struct{}{}
				mismatches = append(mismatches, Mismatch{
					Kind:     Unrepaired,
					Token:    tok,
					Position: pos,
					Expected: len(sourceTokens),
				})
			}
			continue
		}

		sb.WriteString(translated[last:loc[0]])
		sb.WriteString(sourceTokens[pos])
		last = loc[1]
	}
	sb.WriteString(translated[last:])

	return sb.String(), mismatches
}

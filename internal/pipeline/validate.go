package pipeline

import (
	"strings"
	"unicode"
)

// Punctuation that never belongs in a postal address.
var addressBlacklist = "`:%$@*^[]{}_«»"

// AddressLooksValid is the plausibility gate applied to an assembled full
// address. It is a character-class heuristic, not a parser: enough word
// characters overall, enough letters, at least two comma separators, at
// least one comma section carrying a digit, no blacklisted punctuation, and
// not a near-constant string.
func AddressLooksValid(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))

	var wordChars, letters, asciiLetters int
	distinct := make(map[rune]struct{})
	for _, r := range address {
		if unicode.IsLetter(r) {
			letters++
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			asciiLetters++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			wordChars++
		}
		distinct[r] = struct{}{}
	}

	if wordChars < 30 || wordChars > 300 {
		return false
	}
	if letters < 20 {
		return false
	}
	if asciiLetters == 0 {
		return false
	}
	if len(distinct) < 5 {
		return false
	}

	// Hyphens and semicolons join house-number ranges; drop them so "12-14"
	// still counts as a digit section, not two.
	stripped := strings.NewReplacer("-", "", ";", "").Replace(address)
	sectionWithDigit := false
	for _, section := range strings.Split(stripped, ",") {
		if strings.ContainsAny(section, "0123456789") {
			sectionWithDigit = true
			break
		}
	}
	if !sectionWithDigit {
		return false
	}

	if strings.Count(address, ",") < 2 {
		return false
	}

	return !strings.ContainsAny(address, addressBlacklist)
}

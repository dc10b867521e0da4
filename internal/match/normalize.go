package match

import (
	"strings"
	"unicode"
)

// conventionSuffixes are trailing tokens that type names often carry
// without changing what they name.
var conventionSuffixes = map[string]bool{
	"entity": true,
	"record": true,
	"model":  true,
	"type":   true,
}

// NormalizeIdent lower-cases an identifier and drops separators and any
// package qualifier: "inventory.Order_Line" becomes "orderline".
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeStem is NormalizeIdent without one trailing convention token
// such as "Entity" or "Record". A name made of that token alone is kept.
func NormalizeStem(s string) string {
	tokens := TokenizeIdent(s)
	if n := len(tokens); n > 1 && conventionSuffixes[tokens[n-1]] {
		tokens = tokens[:n-1]
	}

	return strings.Join(tokens, "")
}

// TokenizeIdent splits the unqualified part of an identifier into
// lower-case words at separators and case changes:
//
//	"inventory.XMLParser" -> ["xml", "parser"]
//	"customer_id"         -> ["customer", "id"]
//	"getHTTPResponse"     -> ["get", "http", "response"]
func TokenizeIdent(s string) []string {
	if i := strings.LastIndexAny(s, "./"); i >= 0 {
		s = s[i+1:]
	}

	runes := []rune(s)

	var (
		tokens []string
		start  = -1
	)

	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, strings.ToLower(string(runes[start:end])))
		}

		start = -1
	}

	for i, r := range runes {
		switch {
		case isSeparator(r):
			flush(i)
			continue
		case start >= 0 && wordBoundary(runes, i):
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// wordBoundary reports whether a new word starts at runes[i]: a lower to
// upper transition ("orderID") or the last capital of an acronym followed
// by a lower-case letter ("XMLParser").
func wordBoundary(runes []rune, i int) bool {
	if i == 0 || !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

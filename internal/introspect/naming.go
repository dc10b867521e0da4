package introspect

import (
	"unicode"
	"unicode/utf8"
)

// Accessor name prefixes.
const (
	GetterPrefix     = "Get"
	BoolGetterPrefix = "Is"
	SetterPrefix     = "Set"
)

// PropertyName derives a property name from a Go identifier or accessor stem.
// The first letter is lower-cased unless the first two letters are both upper
// case: "UserName" becomes "userName", "K" becomes "k", "URL" stays "URL".
func PropertyName(name string) string {
	if name == "" {
		return name
	}

	first, size := utf8.DecodeRuneInString(name)
	if second, _ := utf8.DecodeRuneInString(name[size:]); unicode.IsUpper(first) && unicode.IsUpper(second) {
		return name
	}

	return string(unicode.ToLower(first)) + name[size:]
}

// Capitalize upper-cases the first letter of name.
func Capitalize(name string) string {
	if name == "" {
		return name
	}

	first, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(first)) + name[size:]
}

// SetterName returns the conventional setter name for an accessor stem.
func SetterName(stem string) string {
	return SetterPrefix + stem
}

// accessorStem returns what follows prefix in name when the remainder starts
// with an upper-case letter: "GetPrice" has stem "Price", "Getaway" has none.
func accessorStem(name, prefix string) (string, bool) {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", false
	}

	stem := name[len(prefix):]
	r, _ := utf8.DecodeRuneInString(stem)

	return stem, unicode.IsUpper(r)
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

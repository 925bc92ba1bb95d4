// Package expr holds the attribute aliasing rules shared by the condition and
// update compilers, and the compiled expression bundle they both produce.
package expr

import (
	_ "embed"
	"strings"
)

//go:embed reserved_words.txt
var reservedWordData string

// Reserved words in DynamoDB that need to be escaped
var reservedWords = loadReservedWords(reservedWordData)

func loadReservedWords(data string) map[string]struct{} {
	words := make(map[string]struct{}, 600)
	for _, line := range strings.Split(data, "\n") {
		word := strings.TrimSpace(line)
		if word == "" {
			continue
		}
		words[strings.ToUpper(word)] = struct{}{}
	}
	return words
}

// IsReservedWord reports whether name matches a DynamoDB reserved word, ignoring case.
func IsReservedWord(name string) bool {
	_, ok := reservedWords[strings.ToUpper(name)]
	return ok
}

// NeedsAlias reports whether name cannot appear verbatim in an expression:
// it is a reserved word or contains a character outside [A-Za-z0-9_]. The
// empty name also reports true, since it cannot be written as a bare token.
func NeedsAlias(name string) bool {
	if name == "" {
		return true
	}
	if IsReservedWord(name) {
		return true
	}
	for i := 0; i < len(name); i++ {
		if !isPlainByte(name[i]) {
			return true
		}
	}
	return false
}

func isPlainByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// AliasAttributeName returns the name placeholder for name.
func AliasAttributeName(name string) string {
	return "#" + name
}

// ValuePlaceholder returns the value placeholder for name. Names already
// carrying the ':' prefix are returned unchanged.
func ValuePlaceholder(name string) string {
	if strings.HasPrefix(name, ":") {
		return name
	}
	return ":" + name
}

// BuildExpressionAttributeNames returns placeholder -> name entries for the
// names that need aliasing. Names that can be referenced directly are omitted,
// and so are empty names, which have no valid placeholder.
func BuildExpressionAttributeNames(names []string) map[string]string {
	out := make(map[string]string)
	for _, name := range names {
		if name != "" && NeedsAlias(name) {
			out[AliasAttributeName(name)] = name
		}
	}
	return out
}

// Sanitize maps every byte outside [A-Za-z0-9_] to '_' so the result can be
// embedded in a placeholder token.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isPlainByte(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

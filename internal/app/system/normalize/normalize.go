// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a query-string value. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Phone strips spaces, dashes and parentheses from a phone number.
func Phone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// OptionalBool parses "true"/"false" (any case). Anything else, including
// "all" and "", yields nil.
func OptionalBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

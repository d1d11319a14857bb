// Package email holds small helpers for working with recipient addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayNameFromEmail derives a readable name from an address's local part,
// used when a recipient is auto-created from an email list and no name is
// known yet. "jane.doe@example.com" becomes "Jane Doe".
func DisplayNameFromEmail(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Recipient"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameFromEmail(t *testing.T) {
	cases := map[string]string{
		"jane.doe@example.com":  "Jane Doe",
		"bob_smith@example.com": "Bob Smith",
		"carol@example.com":     "Carol",
		"x+test@example.com":    "X Test",
		"@example.com":          "Recipient",
		"":                      "Recipient",
	}
	for address, want := range cases {
		assert.Equal(t, want, DisplayNameFromEmail(address), "address %q", address)
	}
}

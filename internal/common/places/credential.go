package places

import (
	"strings"

	"business-finder/internal/common/errors"
)

// placeholderKeys are sample values shipped in env templates.
var placeholderKeys = map[string]bool{
	"tu_api_key_aqui":   true,
	"your_api_key_here": true,
	"YOUR_API_KEY":      true,
}

// CheckCredential rejects an empty or placeholder API key.
func CheckCredential(apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return errors.NewMissingCredentialError("api key is empty")
	}
	if placeholderKeys[key] {
		return errors.NewMissingCredentialError("api key is a placeholder value")
	}
	return nil
}

package credentials

import (
	"fmt"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register cookie-store finders
)

// browserSessionKey looks for a claude.ai session cookie in any installed
// browser's cookie store.
func browserSessionKey() (string, error) {
	cookies := kooky.ReadCookies(
		kooky.Valid,
		kooky.DomainHasSuffix("claude.ai"),
		kooky.Name("sessionKey"),
	)
	for _, c := range cookies {
		if looksLikeSessionKey(c.Value) {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("no claude.ai session cookie in browser stores")
}

// Package credentials resolves the bearer credential for plan-usage fetches.
// Sources are tried in order: an explicitly configured token, the account's
// environment variable, the Claude desktop app's cookie store, and finally
// any installed browser's cookies. The caller receives a credential or a
// "none found" error; it never blocks on user interaction.
package credentials

import (
	"errors"
	"strings"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
)

// ErrNotFound means every source came up empty. Providers map this to the
// no-credential outcome.
var ErrNotFound = errors.New("no credential found")

// Credential is an opaque bearer token plus how to present it. Session keys
// lifted from cookie stores are sent as a Cookie header; everything else as
// a Bearer token.
type Credential struct {
	Token      string
	FromCookie bool
}

// Resolve walks the source chain for the given account.
func Resolve(acct core.AccountConfig) (Credential, error) {
	if key := acct.ResolveAPIKey(); key != "" {
		return Credential{Token: key}, nil
	}

	if key, err := desktopSessionKey(); err == nil && key != "" {
		return Credential{Token: key, FromCookie: true}, nil
	}

	if key, err := browserSessionKey(); err == nil && key != "" {
		return Credential{Token: key, FromCookie: true}, nil
	}

	return Credential{}, ErrNotFound
}

func looksLikeSessionKey(v string) bool {
	return strings.HasPrefix(v, "sk-ant-")
}

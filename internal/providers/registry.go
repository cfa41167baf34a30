// Package providers wires the concrete normalizer strategies into a
// registry keyed by the provider ID stored in settings.
package providers

import (
	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/anthropic"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/claudeplan"
)

func All() []core.UsageProvider {
	return []core.UsageProvider{
		anthropic.New(),
		claudeplan.New(),
	}
}

func ForID(id string) (core.UsageProvider, bool) {
	for _, p := range All() {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

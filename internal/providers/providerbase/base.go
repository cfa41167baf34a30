package providerbase

import "github.com/janekbaraniewski/tokenmeter/internal/core"

// Base centralizes provider metadata. Provider-specific packages embed this
// and implement only Fetch().
type Base struct {
	spec core.ProviderSpec
}

func New(spec core.ProviderSpec) Base {
	normalized := spec
	if normalized.ID == "" {
		normalized.ID = "unknown"
	}
	if normalized.Info.Name == "" {
		normalized.Info.Name = normalized.ID
	}
	if normalized.Policy == "" {
		normalized.Policy = core.PolicyRemaining
	}

	return Base{spec: normalized}
}

func (b Base) ID() string {
	return b.spec.ID
}

func (b Base) Describe() core.ProviderInfo {
	return b.spec.Info
}

func (b Base) Metrics() []core.MetricSpec {
	return b.spec.Metrics
}

func (b Base) Policy() core.Policy {
	return b.spec.Policy
}

func (b Base) Spec() core.ProviderSpec {
	return b.spec
}

package core

// ProviderSpec is the static description a provider registers: identity,
// the metrics it can emit in display order, and the aggregation policy its
// percentages carry.
type ProviderSpec struct {
	ID      string
	Info    ProviderInfo
	Metrics []MetricSpec
	Policy  Policy
}

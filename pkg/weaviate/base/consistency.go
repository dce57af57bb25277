package base

// Consistency levels accepted by object, batch and reference endpoints.
const (
	ConsistencyLevelOne    = "ONE"
	ConsistencyLevelQuorum = "QUORUM"
	ConsistencyLevelAll    = "ALL"
)

// Additional property names accepted by the object getter's include list.
const (
	AdditionalClassification    = "classification"
	AdditionalVector            = "vector"
	AdditionalFeatureProjection = "featureProjection"
	AdditionalInterpretation    = "interpretation"
)

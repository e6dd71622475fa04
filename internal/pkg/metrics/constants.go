package metrics

// Component label values used by app-level metrics.
const (
	ComponentBackend     = "backend"
	ComponentRedis       = "redis"
	ComponentKafka       = "kafka"
	ComponentConformance = "conformance"
	ComponentHTTP        = "http"
)

package backend

// Config holds connection options for the execution backend.
//
// RPCURL is the node endpoint used to fetch blocks and receipts (http/https
// or ws/wss). Network selects the chain configuration the fork
// classification predicates are derived from.
type Config struct {
	RPCURL              string `validate:"required,uri"`
	Network             string `validate:"required,oneof=mainnet sepolia holesky dev"`
	FetchTimeoutSeconds int    `validate:"gte=0,lte=300"`

	DialMaxRetryAttempts      int     `validate:"gte=0"`
	DialRetryInitialBackoffMS int     `validate:"gte=0"`
	DialRetryMaxBackoffMS     int     `validate:"gte=0"`
	DialRetryJitter           float64 `validate:"gte=0,lte=1"`
}

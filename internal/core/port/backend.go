package port

import (
	"context"
	"math/big"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// ChainReader abstracts the execution backend the conformance layer sits in
// front of. Implementations fetch chain objects and hand them over in
// backend-native record form, together with the fork classification
// predicates derived from the backend's chain configuration.
type ChainReader interface {
	// Connect dials the backend node; fetch methods fail until it succeeds.
	Connect(ctx context.Context) error
	// BlockByNumber fetches the block at the given height; a nil number
	// means the latest block. With fullTransactions the record carries
	// materialized transaction records, otherwise 32 byte hash references.
	BlockByNumber(ctx context.Context, number *big.Int, fullTransactions bool) (entity.Record, error)
	// ReceiptByTxHash fetches the receipt record for a transaction hash.
	ReceiptByTxHash(ctx context.Context, txHash []byte) (entity.Record, error)
	// ForkPredicates exposes the backend's block fork classification.
	ForkPredicates() entity.ForkPredicates
	Close()
}

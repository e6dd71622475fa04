package port

import (
	"context"
	"math/big"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// ConformanceService coordinates the workflow between the execution
// backend, the outbound validator, the report store, and the verdict
// publisher.
type ConformanceService interface {
	// CheckBlock fetches a block from the backend, validates it, records
	// the verdict, and returns the validated record.
	CheckBlock(ctx context.Context, number *big.Int, fullTransactions bool) (entity.Record, error)
	// CheckReceipt fetches and validates the receipt for a transaction.
	CheckReceipt(ctx context.Context, txHash []byte) (entity.Record, error)
	// CheckTransaction validates a caller-supplied transaction record.
	CheckTransaction(ctx context.Context, tx entity.Record) error
	// CheckWithdrawal validates a caller-supplied withdrawal record.
	CheckWithdrawal(ctx context.Context, withdrawal entity.Record) error
}

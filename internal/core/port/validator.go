package port

import "github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"

// OutboundValidator enforces the outbound schema on backend-produced chain
// objects. Every method either returns nil or a validation error fatal to
// the enclosing operation; ValidateBlock additionally returns the record
// with fork-unintroduced fields rewritten to the null sentinel.
type OutboundValidator interface {
	ValidateBlock(block entity.Record) (entity.Record, error)
	ValidateTransaction(tx entity.Record) error
	ValidateReceipt(receipt entity.Record) error
	ValidateWithdrawal(withdrawal entity.Record) error
	ValidateAccounts(accounts any) error
}

package validation

import (
	"fmt"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
)

// Outbound validates backend-produced chain objects before they are handed
// back to a caller. It is stateless apart from the fork predicates supplied
// by the backend, so a single instance may be shared across goroutines;
// the only mutation it performs is the fork-field rewrite on the block
// record passed to ValidateBlock, which the calling goroutine owns.
type Outbound struct {
	forks entity.ForkPredicates
}

// NewOutbound builds an outbound validator bound to the backend's fork
// classification predicates.
func NewOutbound(forks entity.ForkPredicates) *Outbound {
	return &Outbound{forks: forks}
}

// ValidateBlock runs the fork-field resolver pre-pass and then the full
// block schema. It returns the same record, mutated in place where
// fork-unintroduced fields were replaced by the entity.Null sentinel.
func (o *Outbound) ValidateBlock(block entity.Record) (entity.Record, error) {
	if block == nil {
		return nil, apperr.NewValidationErr("block record is required", nil)
	}
	if err := o.resolveForkFields(block); err != nil {
		return nil, err
	}
	if err := validateBlockRecord(block); err != nil {
		return nil, err
	}
	return block, nil
}

// resolveForkFields validates fork-introduced block fields when the block's
// fork classification says they must exist, and overwrites them with the
// null sentinel otherwise. The stages run unconditionally in protocol
// order: London, Shanghai, Cancun, Prague. The generic block schema accepts
// these fields unchecked, so this pre-pass is the only place their shape is
// enforced.
func (o *Outbound) resolveForkFields(block entity.Record) error {
	if applies(o.forks.IsLondon, block) {
		if err := forkField("base_fee_per_gas", PositiveInteger, block); err != nil {
			return err
		}
	} else {
		block["base_fee_per_gas"] = entity.Null
	}

	if applies(o.forks.IsShanghai, block) {
		if err := forkField("withdrawals", Array(validateWithdrawalRecord), block); err != nil {
			return err
		}
		if err := forkField("withdrawals_root", Bytes32, block); err != nil {
			return err
		}
	} else {
		block["withdrawals"] = entity.Null
		block["withdrawals_root"] = entity.Null
	}

	if applies(o.forks.IsCancun, block) {
		if err := forkField("parent_beacon_block_root", Bytes32, block); err != nil {
			return err
		}
		if err := forkField("blob_gas_used", PositiveInteger, block); err != nil {
			return err
		}
		if err := forkField("excess_blob_gas", PositiveInteger, block); err != nil {
			return err
		}
	} else {
		block["parent_beacon_block_root"] = entity.Null
		block["blob_gas_used"] = entity.Null
		block["excess_blob_gas"] = entity.Null
	}

	if applies(o.forks.IsPrague, block) {
		if err := forkField("requests_hash", Bytes32, block); err != nil {
			return err
		}
	} else {
		block["requests_hash"] = entity.Null
	}

	return nil
}

func applies(predicate func(entity.Record) bool, block entity.Record) bool {
	return predicate != nil && predicate(block)
}

func forkField(name string, v Validator, block entity.Record) error {
	if err := v(block[name]); err != nil {
		return apperr.NewValidationErr(fmt.Sprintf("field %q", name), err)
	}
	return nil
}

// ValidateTransaction checks a transaction record against the five known
// transaction shapes, first structural match wins.
func (o *Outbound) ValidateTransaction(tx entity.Record) error {
	return validateTransactionRecord(tx)
}

// ValidateReceipt checks a receipt record against the base and Cancun
// extended receipt shapes.
func (o *Outbound) ValidateReceipt(receipt entity.Record) error {
	return validateReceiptRecord(receipt)
}

// ValidateWithdrawal checks a single withdrawal record.
func (o *Outbound) ValidateWithdrawal(withdrawal entity.Record) error {
	return validateWithdrawalRecord(withdrawal)
}

// ValidateAccounts checks a list of canonical account addresses.
func (o *Outbound) ValidateAccounts(accounts any) error {
	return validateAccountList(accounts)
}

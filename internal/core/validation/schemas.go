package validation

import (
	"fmt"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
)

// Schema tables for every outbound chain object. Each transaction and
// receipt variant extends its base table instead of restating it, so a
// field check lives in exactly one place.

var logEntrySchema = Schema{
	"type":              LogEntryType,
	"log_index":         PositiveInteger,
	"transaction_index": IfNotNull(PositiveInteger),
	"transaction_hash":  Bytes32,
	"block_hash":        IfNotNull(Bytes32),
	"block_number":      IfNotNull(PositiveInteger),
	"address":           CanonicalAddress,
	"data":              Bytes,
	"topics":            Array(Bytes32),
}

// ValidateLogEntry checks a single log record, pending or mined.
var ValidateLogEntry = Dict(logEntrySchema)

// AccessList validates an EIP-2930 access list: a list of two-element
// entries holding a 20 byte address and a possibly empty list of
// non-negative storage key integers.
func AccessList(value any) error {
	entries, ok := value.([]any)
	if !ok {
		return apperr.NewValidationErr(fmt.Sprintf("access_list is not list-like, got %T", value), nil)
	}
	for i, raw := range entries {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return apperr.NewValidationErr(fmt.Sprintf("access_list entry %d not properly formatted: %v", i, raw), nil)
		}
		if err := CanonicalAddress(pair[0]); err != nil {
			return apperr.NewValidationErr(fmt.Sprintf("access_list entry %d address not properly formatted", i), err)
		}
		keys, ok := pair[1].([]any)
		if !ok {
			return apperr.NewValidationErr(fmt.Sprintf("access_list entry %d storage keys are not list-like: %v", i, pair[1]), nil)
		}
		for j, key := range keys {
			if err := PositiveInteger(key); err != nil {
				return apperr.NewValidationErr(fmt.Sprintf("access_list entry %d storage key %d not properly formatted", i, j), err)
			}
		}
	}
	return nil
}

var authorizationSchema = Schema{
	"chain_id": Uint256,
	"address":  CanonicalAddress,
	"nonce":    Uint64,
	"y_parity": YParity,
	"r":        Uint256,
	"s":        Uint256,
}

// AuthorizationList validates an EIP-7702 authorization list: each entry is
// a record with exactly the chain_id, address, nonce, y_parity, r and s keys.
func AuthorizationList(value any) error {
	entries, ok := value.([]any)
	if !ok {
		return apperr.NewValidationErr(fmt.Sprintf("authorization_list is not list-like, got %T", value), nil)
	}
	check := Dict(authorizationSchema)
	for i, auth := range entries {
		if err := check(auth); err != nil {
			return apperr.NewValidationErr(fmt.Sprintf("authorization_list entry %d not properly formatted", i), err)
		}
	}
	return nil
}

var legacyTransactionSchema = Schema{
	"type":              TransactionType,
	"hash":              Bytes32,
	"nonce":             Uint64,
	"block_hash":        IfNotNull(Bytes32),
	"block_number":      IfNotNull(PositiveInteger),
	"transaction_index": IfNotNull(PositiveInteger),
	"from":              CanonicalAddress,
	"to":                IfNotCreateAddress(CanonicalAddress),
	"value":             Uint256,
	"gas":               Uint256,
	"gas_price":         Uint256,
	"data":              Bytes,
	"v":                 SignatureV,
	"r":                 Uint256,
	"s":                 Uint256,
}

var accessListTransactionSchema = legacyTransactionSchema.Extend(Schema{
	"v":           YParity,
	"y_parity":    YParity,
	"chain_id":    Uint256,
	"access_list": AccessList,
})

var dynamicFeeTransactionSchema = accessListTransactionSchema.Extend(Schema{
	"max_fee_per_gas":          Uint256,
	"max_priority_fee_per_gas": Uint256,
})

var blobTransactionSchema = dynamicFeeTransactionSchema.Extend(Schema{
	"max_fee_per_blob_gas":  Uint256,
	"blob_versioned_hashes": Array(Bytes32),
})

var setCodeTransactionSchema = dynamicFeeTransactionSchema.Extend(Schema{
	"authorization_list": AuthorizationList,
})

// transactionChoices lists the transaction shapes in the order they are
// attempted; a record matching an earlier shape never reaches a later one.
var transactionChoices = []Choice{
	{Name: "legacy transaction", Validate: Dict(legacyTransactionSchema)},
	{Name: "access list transaction", Validate: Dict(accessListTransactionSchema)},
	{Name: "dynamic fee transaction", Validate: Dict(dynamicFeeTransactionSchema)},
	{Name: "blob transaction", Validate: Dict(blobTransactionSchema)},
	{Name: "set code transaction", Validate: Dict(setCodeTransactionSchema)},
}

var validateTransactionRecord = Any(transactionChoices...)

var withdrawalSchema = Schema{
	"index":           Uint64,
	"validator_index": Uint64,
	"address":         CanonicalAddress,
	"amount":          Uint64,
}

var validateWithdrawalRecord = Dict(withdrawalSchema)

var receiptSchema = Schema{
	"transaction_hash":    Bytes32,
	"transaction_index":   IfNotNull(PositiveInteger),
	"block_number":        IfNotNull(PositiveInteger),
	"block_hash":          IfNotNull(Bytes32),
	"cumulative_gas_used": PositiveInteger,
	"effective_gas_price": IfNotNull(PositiveInteger),
	"from":                CanonicalAddress,
	"gas_used":            PositiveInteger,
	"contract_address":    IfNotNull(CanonicalAddress),
	"logs":                Array(ValidateLogEntry),
	"state_root":          Bytes,
	"status":              Status,
	"to":                  IfNotCreateAddress(CanonicalAddress),
	"type":                TransactionType,
}

var cancunReceiptSchema = receiptSchema.Extend(Schema{
	"blob_gas_used":  PositiveInteger,
	"blob_gas_price": PositiveInteger,
})

var validateReceiptRecord = Any(
	Choice{Name: "receipt", Validate: Dict(receiptSchema)},
	Choice{Name: "cancun receipt", Validate: Dict(cancunReceiptSchema)},
)

// blockSchema covers header fields, the bloom filter, and a transactions
// list that is either 32 byte hash references or fully materialized
// transaction records of one kind. Fork-introduced fields pass through
// Accept because the fork-field resolver checks them before this table runs.
var blockSchema = Schema{
	"number":            PositiveInteger,
	"hash":              Bytes32,
	"parent_hash":       Bytes32,
	"nonce":             BlockNonce,
	"sha3_uncles":       Bytes32,
	"logs_bloom":        LogsBloom,
	"transactions_root": Bytes32,
	"receipts_root":     Bytes32,
	"state_root":        Bytes32,
	"coinbase":          CanonicalAddress,
	"difficulty":        PositiveInteger,
	"mix_hash":          Bytes32,
	"total_difficulty":  PositiveInteger,
	"size":              PositiveInteger,
	"extra_data":        Bytes32,
	"gas_limit":         PositiveInteger,
	"gas_used":          PositiveInteger,
	"timestamp":         PositiveInteger,
	"transactions": Any(
		Choice{Name: "array of transaction hashes", Validate: Array(Bytes32)},
		Choice{Name: "array of legacy transactions", Validate: Array(Dict(legacyTransactionSchema))},
		Choice{Name: "array of access list transactions", Validate: Array(Dict(accessListTransactionSchema))},
		Choice{Name: "array of dynamic fee transactions", Validate: Array(Dict(dynamicFeeTransactionSchema))},
		Choice{Name: "array of blob transactions", Validate: Array(Dict(blobTransactionSchema))},
		Choice{Name: "array of set code transactions", Validate: Array(Dict(setCodeTransactionSchema))},
	),
	"uncles": Array(Bytes32),
	// London fork:
	"base_fee_per_gas": Accept,
	// Shanghai fork:
	"withdrawals":      Accept,
	"withdrawals_root": Accept,
	// Cancun fork:
	"parent_beacon_block_root": Accept,
	"blob_gas_used":            Accept,
	"excess_blob_gas":          Accept,
	// Prague fork:
	"requests_hash": Accept,
}

var validateBlockRecord = Dict(blockSchema)

// validateAccountList checks a list of canonical addresses.
var validateAccountList = Array(CanonicalAddress)

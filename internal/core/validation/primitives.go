package validation

import (
	"fmt"
	"math/big"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
)

var (
	maxUint64   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	maxUint256  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	maxUint2048 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2048), big.NewInt(1))
)

// Bytes requires the value to be a byte string.
func Bytes(value any) error {
	if _, ok := value.([]byte); !ok {
		return apperr.NewValidationErr(fmt.Sprintf("must be a byte string, got %T", value), nil)
	}
	return nil
}

// Bytes32 requires a byte string of exactly 32 bytes.
func Bytes32(value any) error {
	if err := Bytes(value); err != nil {
		return err
	}
	if b := value.([]byte); len(b) != 32 {
		return apperr.NewValidationErr(fmt.Sprintf("must be of length 32, got %#x of length %d", b, len(b)), nil)
	}
	return nil
}

// BlockNonce requires a byte string of exactly 8 bytes.
func BlockNonce(value any) error {
	if err := Bytes(value); err != nil {
		return err
	}
	if b := value.([]byte); len(b) != 8 {
		return apperr.NewValidationErr(fmt.Sprintf("must be of length 8, got %#x of length %d", b, len(b)), nil)
	}
	return nil
}

// CanonicalAddress requires a 20 byte binary account identifier.
func CanonicalAddress(value any) error {
	if err := Bytes(value); err != nil {
		return err
	}
	if b := value.([]byte); len(b) != 20 {
		return apperr.NewValidationErr(fmt.Sprintf("must be a 20 byte string, got %#x of length %d", b, len(b)), nil)
	}
	return nil
}

// PositiveInteger requires an integer >= 0.
func PositiveInteger(value any) error {
	n, ok := value.(*big.Int)
	if !ok {
		return apperr.NewValidationErr(fmt.Sprintf("must be an integer, got %T", value), nil)
	}
	if n.Sign() < 0 {
		return apperr.NewValidationErr(fmt.Sprintf("must not be negative, got %s", n), nil)
	}
	return nil
}

// Uint64 requires an integer in [0, 2^64-1].
func Uint64(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); n.Cmp(maxUint64) > 0 {
		return apperr.NewValidationErr(fmt.Sprintf("value exceeds 64 bit integer size: %s", n), nil)
	}
	return nil
}

// Uint256 requires an integer in [0, 2^256-1].
func Uint256(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); n.Cmp(maxUint256) > 0 {
		return apperr.NewValidationErr(fmt.Sprintf("value exceeds 256 bit integer size: %s", n), nil)
	}
	return nil
}

// LogsBloom requires an integer in [0, 2^2048-1].
func LogsBloom(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); n.Cmp(maxUint2048) > 0 {
		return apperr.NewValidationErr(fmt.Sprintf("value exceeds 2048 bit integer size: %s", n), nil)
	}
	return nil
}

// Status requires a receipt status of 0 or 1.
func Status(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); !n.IsUint64() || n.Uint64() > 1 {
		return apperr.NewValidationErr(fmt.Sprintf("invalid status value %s, only 0 or 1 allowed", n), nil)
	}
	return nil
}

// SignatureV requires the `v` portion of a legacy signature: 0, 1, 27, 28,
// or any chain-id-encoded value >= 35.
func SignatureV(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	n := value.(*big.Int)
	if n.Cmp(big.NewInt(35)) >= 0 {
		return nil
	}
	switch n.Int64() {
	case 0, 1, 27, 28:
		return nil
	}
	return apperr.NewValidationErr(fmt.Sprintf("the `v` portion of the signature must be 0, 1, 27, 28 or >= 35, got %s", n), nil)
}

// YParity requires the signature parity bit to be 0 or 1.
func YParity(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); !n.IsUint64() || n.Uint64() > 1 {
		return apperr.NewValidationErr(fmt.Sprintf("the `y_parity` value of the signature must be either 0 or 1, got %s", n), nil)
	}
	return nil
}

// LogEntryType requires the log entry type to be "pending" or "mined".
func LogEntryType(value any) error {
	s, ok := value.(string)
	if !ok || (s != "pending" && s != "mined") {
		return apperr.NewValidationErr(fmt.Sprintf("log entry type must be one of 'pending' or 'mined', got %v", value), nil)
	}
	return nil
}

// TransactionType requires one of the known transaction type identifiers:
// 0 legacy, 1 access list, 2 dynamic fee, 3 blob, 4 set code.
func TransactionType(value any) error {
	if err := PositiveInteger(value); err != nil {
		return err
	}
	if n := value.(*big.Int); !n.IsUint64() || n.Uint64() > 4 {
		return apperr.NewValidationErr(fmt.Sprintf("transaction type must be in [0, 4], got %s", n), nil)
	}
	return nil
}

package entity

import "math/big"

// Record is the backend-native representation of a chain object as handed to
// the outbound validation layer: byte-string fields hold []byte, numeric
// fields hold *big.Int, list fields hold []any, and nested objects hold
// Record. Upstream normalization guarantees these value types before a
// Record reaches the validators.
type Record map[string]any

// nullValue and createAddressValue are unexported so the package-level
// sentinels below are the only instances; comparing against them with ==
// is therefore exact.
type nullValue struct{}

type createAddressValue struct{}

// Null marks a field that does not exist at the block's fork height. The
// fork-field resolver injects it so the exact-key-set schema check still
// passes for pre-fork blocks; downstream normalization strips it before the
// record reaches an API caller.
var Null any = nullValue{}

// CreateAddress marks the recipient of a contract-creation transaction,
// where the `to` field carries no address.
var CreateAddress any = createAddressValue{}

// ForkPredicates classifies a block record against the protocol upgrades
// that introduce new header fields. The backend computes these from its
// chain configuration; the validation layer only consumes them.
//
// The backend must keep the classifications monotonic: a Prague block is
// also a Cancun, Shanghai, and London block.
type ForkPredicates struct {
	IsLondon   func(Record) bool
	IsShanghai func(Record) bool
	IsCancun   func(Record) bool
	IsPrague   func(Record) bool
}

// Clone returns a shallow copy of the record. The fork-field resolver
// mutates its input in place; callers that need to keep the original intact
// hand the validator a clone.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// BigInt returns the named field as *big.Int, or nil when the field is
// absent or holds a different type.
func (r Record) BigInt(key string) *big.Int {
	v, ok := r[key].(*big.Int)
	if !ok {
		return nil
	}
	return v
}

// Bytes returns the named field as []byte, or nil when the field is absent
// or holds a different type.
func (r Record) Bytes(key string) []byte {
	v, ok := r[key].([]byte)
	if !ok {
		return nil
	}
	return v
}

package usecase

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// Record <-> JSON mapping. Byte strings travel as 0x-prefixed hex, integers
// as decimal strings, nested records and lists recursively. Keys holding
// the entity.Null sentinel are stripped on the way out: the sentinel exists
// only so the exact-key-set schema check passes, callers never see it. The
// entity.CreateAddress sentinel encodes as an explicit JSON null on the
// `to` field, the conventional wire shape for contract creations.

// RecordToJSON converts a validated record into a JSON-marshalable map.
func RecordToJSON(rec entity.Record) map[string]any {
	if rec == nil {
		return nil
	}
	out := make(map[string]any, len(rec))
	for key, value := range rec {
		if value == entity.Null {
			continue
		}
		out[key] = valueToJSON(value)
	}
	return out
}

func valueToJSON(value any) any {
	switch v := value.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(v)
	case *big.Int:
		return v.String()
	case entity.Record:
		return RecordToJSON(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = valueToJSON(item)
		}
		return out
	default:
		if value == entity.CreateAddress {
			return nil
		}
		return value
	}
}

// RecordFromJSON converts a decoded JSON object into a backend-native
// record: 0x-prefixed strings become byte strings, other strings and JSON
// numbers become integers, nested objects and arrays recurse. A JSON null
// maps to the contract-creation sentinel on the `to` field and to the null
// sentinel everywhere else.
func RecordFromJSON(obj map[string]any) entity.Record {
	if obj == nil {
		return nil
	}
	rec := make(entity.Record, len(obj))
	for key, value := range obj {
		rec[key] = valueFromJSON(key, value)
	}
	return rec
}

func valueFromJSON(key string, value any) any {
	switch v := value.(type) {
	case nil:
		if key == "to" {
			return entity.CreateAddress
		}
		return entity.Null
	case string:
		if strings.HasPrefix(v, "0x") {
			if b, err := hex.DecodeString(v[2:]); err == nil {
				return b
			}
			return v
		}
		if n, ok := new(big.Int).SetString(v, 10); ok {
			return n
		}
		return v
	case float64:
		// encoding/json default numeric type; chain quantities should be
		// sent as strings, but small integers are accepted.
		return new(big.Int).SetInt64(int64(v))
	case map[string]any:
		return RecordFromJSON(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = valueFromJSON(key, item)
		}
		return out
	default:
		return value
	}
}

package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
)

// Validator checks a single value and returns nil on success or a
// *apperr.ValidationErr describing the expected shape and the actual value.
// Validators are pure and deterministic; combinators below compose them
// into record and union validators.
type Validator func(value any) error

// Schema maps field names to their validators. A record validated against a
// Schema must carry exactly the schema's key set.
type Schema map[string]Validator

// Extend returns a new Schema with the receiver's entries plus the given
// overrides. The receiver is not modified; fork- and type-layered schemas
// share structure through this instead of duplicating tables.
func (s Schema) Extend(overrides Schema) Schema {
	out := make(Schema, len(s)+len(overrides))
	maps.Copy(out, s)
	maps.Copy(out, overrides)
	return out
}

// Accept validates any value. Block schemas bind it to fork-specific fields
// whose real check happens in the fork-field resolver pre-pass.
func Accept(any) error { return nil }

// Array returns a validator that requires a []any subject and applies elem
// to every element. The first failing element aborts with its index in the
// error.
func Array(elem Validator) Validator {
	return func(value any) error {
		items, ok := value.([]any)
		if !ok {
			return apperr.NewValidationErr(fmt.Sprintf("must be a list, got %T", value), nil)
		}
		for i, item := range items {
			if err := elem(item); err != nil {
				return apperr.NewValidationErr(fmt.Sprintf("element %d", i), err)
			}
		}
		return nil
	}
}

// Dict returns a validator that requires an entity.Record subject whose key
// set exactly equals the schema's. Missing and unexpected keys are equally
// fatal; on a key match every field validator runs against its value, in
// sorted field order so failures are deterministic.
func Dict(schema Schema) Validator {
	return func(value any) error {
		rec, ok := value.(entity.Record)
		if !ok {
			return apperr.NewValidationErr(fmt.Sprintf("must be a record, got %T", value), nil)
		}
		var missing, unexpected []string
		for key := range schema {
			if _, present := rec[key]; !present {
				missing = append(missing, key)
			}
		}
		for key := range rec {
			if _, known := schema[key]; !known {
				unexpected = append(unexpected, key)
			}
		}
		if len(missing) > 0 || len(unexpected) > 0 {
			slices.Sort(missing)
			slices.Sort(unexpected)
			return apperr.NewValidationErr(keyMismatchMessage(missing, unexpected), nil)
		}
		for _, key := range slices.Sorted(maps.Keys(schema)) {
			if err := schema[key](rec[key]); err != nil {
				return apperr.NewValidationErr(fmt.Sprintf("field %q", key), err)
			}
		}
		return nil
	}
}

func keyMismatchMessage(missing, unexpected []string) string {
	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, "missing keys "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected keys "+strings.Join(unexpected, ", "))
	}
	return "record key set does not match schema: " + strings.Join(parts, "; ")
}

// Choice names one candidate shape for Any, so an aggregate failure can
// report every shape that was attempted.
type Choice struct {
	Name     string
	Validate Validator
}

// Any returns a validator that tries each choice in order and succeeds on
// the first match. Individual branch errors are suppressed; only when every
// branch fails does it return a single aggregate error naming all attempted
// shapes. There is no partial matching or best-match selection.
func Any(choices ...Choice) Validator {
	return func(value any) error {
		for _, c := range choices {
			if err := c.Validate(value); err == nil {
				return nil
			}
		}
		names := make([]string, len(choices))
		for i, c := range choices {
			names[i] = c.Name
		}
		return apperr.NewValidationErr("did not match any of: "+strings.Join(names, ", "), nil)
	}
}

// IfNotNull wraps v so the entity.Null sentinel passes trivially. Fields
// introduced by a fork, or unset in pending objects, carry the sentinel
// instead of being absent from the record.
func IfNotNull(v Validator) Validator {
	return func(value any) error {
		if value == entity.Null {
			return nil
		}
		return v(value)
	}
}

// IfNotCreateAddress wraps v so the entity.CreateAddress sentinel passes
// trivially, for `to` fields of contract-creation transactions.
func IfNotCreateAddress(v Validator) Validator {
	return func(value any) error {
		if value == entity.CreateAddress {
			return nil
		}
		return v(value)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// Op is a predicate comparison operator.
type Op string

const (
	OpEq Op = "eq"
	OpGT Op = ">"
	OpLT Op = "<"
	OpGE Op = ">="
	OpLE Op = "<="
)

// Condition is one per-column predicate. Conditions on a query combine with
// AND semantics.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// ParseOp maps an operator token to an Op, accepting "=" and "==" for
// equality. Unsupported operators are a configuration error at the call
// site, not a store-internal failure.
func ParseOp(token string) (Op, error) {
	switch token {
	case "=", "==", "eq":
		return OpEq, nil
	case ">":
		return OpGT, nil
	case "<":
		return OpLT, nil
	case ">=":
		return OpGE, nil
	case "<=":
		return OpLE, nil
	default:
		return "", fmt.Errorf("unsupported operator %q (use =, >, <, >=, <=)", token)
	}
}

// Query returns the records matching every condition, sorted by author
// identifier. Unknown columns and unsupported operators are configuration
// errors; a null attribute value never matches any condition.
func (s *Store) Query(conds []Condition) ([]types.UserRecord, error) {
	for _, cond := range conds {
		if _, ok := (&types.UserRecord{}).Column(cond.Column); !ok {
			return nil, fmt.Errorf("unknown column %q", cond.Column)
		}
		switch cond.Op {
		case OpEq, OpGT, OpLT, OpGE, OpLE:
		default:
			return nil, fmt.Errorf("unsupported operator %q", cond.Op)
		}
	}

	var out []types.UserRecord
	for _, rec := range s.All() {
		if matches(&rec, conds) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(rec *types.UserRecord, conds []Condition) bool {
	for _, cond := range conds {
		val, _ := rec.Column(cond.Column)
		if val == nil {
			return false
		}
		if !compare(val, cond.Op, cond.Value) {
			return false
		}
	}
	return true
}

// compare evaluates one predicate. Ordering operators require both sides to
// coerce to a number; equality falls back to string comparison when either
// side is non-numeric.
func compare(have any, op Op, want any) bool {
	hf, hok := toFloat(have)
	wf, wok := toFloat(want)

	if op == OpEq {
		if hok && wok {
			return hf == wf
		}
		return fmt.Sprint(have) == fmt.Sprint(want)
	}

	if !hok || !wok {
		return false
	}
	switch op {
	case OpGT:
		return hf > wf
	case OpLT:
		return hf < wf
	case OpGE:
		return hf >= wf
	case OpLE:
		return hf <= wf
	}
	return false
}

// toFloat coerces a column or predicate value to a number. Strings are
// parsed; times compare by Unix seconds; lists are non-numeric.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	case time.Time:
		return float64(val.Unix()), true
	default:
		return 0, false
	}
}

package supabase

import (
	"fmt"
	"net/url"
	"strings"
)

// Op is a comparator understood by the remote query language. The textual
// form is produced only when a request is built, so the rest of the codebase
// never handles raw "eq.value" strings.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpLike
	OpILike
	OpIn
	OpIs
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpLike:
		return "like"
	case OpILike:
		return "ilike"
	case OpIn:
		return "in"
	case OpIs:
		return "is"
	}
	return "eq"
}

// Filter is a single column condition.
type Filter struct {
	Column string
	Op     Op
	Value  any
	values []any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }
func Gt(column string, value any) Filter  { return Filter{Column: column, Op: OpGt, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func Lt(column string, value any) Filter  { return Filter{Column: column, Op: OpLt, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }
func Is(column string, value any) Filter  { return Filter{Column: column, Op: OpIs, Value: value} }

func Like(column string, pattern string) Filter {
	return Filter{Column: column, Op: OpLike, Value: pattern}
}

func ILike(column string, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, values: values}
}

func (f Filter) encode() string {
	if f.Op == OpIn {
		parts := make([]string, len(f.values))
		for i, v := range f.values {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("in.(%s)", strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s.%v", f.Op, f.Value)
}

func applyFilters(params url.Values, filters []Filter) {
	for _, f := range filters {
		params.Add(f.Column, f.encode())
	}
}

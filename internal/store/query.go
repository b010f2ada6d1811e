package store

import (
	"fmt"
	"strings"
)

// Filter operators supported by list reads. Prefix emulates a "starts with"
// range over a text field; AnyOf matches rows whose array field shares at
// least one value with the given set.
type FilterOp int

const (
	OpEquals FilterOp = iota
	OpPrefix
	OpAnyOf
)

// Filter is one conjunct of a list query. Field names are the column names of
// the target collection.
type Filter struct {
	Field  string
	Op     FilterOp
	Value  string
	Values []string
}

func Equals(field, value string) Filter { return Filter{Field: field, Op: OpEquals, Value: value} }
func Prefix(field, value string) Filter { return Filter{Field: field, Op: OpPrefix, Value: value} }
func AnyOf(field string, values []string) Filter {
	return Filter{Field: field, Op: OpAnyOf, Values: values}
}

// prefixSentinel closes the lexicographic range for prefix filters: every
// string starting with p sorts between p and p+sentinel.
const prefixSentinel = "\uf8ff"

// compileFilters renders a conjunction of filters as a SQL WHERE fragment and
// its positional arguments, starting at placeholder $1. An empty filter list
// yields an empty fragment.
func compileFilters(filters []Filter) (string, []any) {
	var clauses []string
	var args []any

	for _, filter := range filters {
		switch filter.Op {
		case OpEquals:
			args = append(args, filter.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", filter.Field, len(args)))
		case OpPrefix:
			args = append(args, filter.Value)
			lower := len(args)
			args = append(args, filter.Value+prefixSentinel)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d AND %s <= $%d", filter.Field, lower, filter.Field, len(args)))
		case OpAnyOf:
			if len(filter.Values) == 0 {
				continue
			}
			var alternatives []string
			for _, value := range filter.Values {
				args = append(args, value)
				alternatives = append(alternatives, fmt.Sprintf("%s @> jsonb_build_array($%d::text)", filter.Field, len(args)))
			}
			clauses = append(clauses, "("+strings.Join(alternatives, " OR ")+")")
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

package snapshot

import (
	"fmt"
	"strings"
)

// Operator is a filter comparison.
type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpContains
	OpGreater
	OpLess
)

var operatorNames = map[Operator]string{
	OpEquals:    "equals",
	OpNotEquals: "not_equals",
	OpContains:  "contains",
	OpGreater:   "greater_than",
	OpLess:      "less_than",
}

func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator accepts the operator names and their symbolic forms.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equals", "eq", "=", "==":
		return OpEquals, nil
	case "not_equals", "ne", "!=", "<>":
		return OpNotEquals, nil
	case "contains", "~":
		return OpContains, nil
	case "greater_than", "gt", ">":
		return OpGreater, nil
	case "less_than", "lt", "<":
		return OpLess, nil
	default:
		return 0, fmt.Errorf("unknown filter operator %q (use equals, not_equals, contains, greater_than, less_than)", s)
	}
}

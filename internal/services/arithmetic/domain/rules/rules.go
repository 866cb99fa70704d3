// Package rules decides which arithmetic operators apply to a selection of
// tiles.
//
// The predicates look only at the selected values, never at the round. The
// round engine gates moves with them and callers use Available to enable or
// disable operator affordances, so both always agree.
package rules

import (
	"cmp"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
)

// Operator names one of the four arithmetic operations.
type Operator string

const (
	OperatorAdd      Operator = "add"
	OperatorSubtract Operator = "subtract"
	OperatorMultiply Operator = "multiply"
	OperatorDivide   Operator = "divide"
)

// Operators lists every operator in display order.
var Operators = []Operator{OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide}

// Glyph returns the symbol used in operation descriptions.
func (o Operator) Glyph() string {
	switch o {
	case OperatorAdd:
		return "+"
	case OperatorSubtract:
		return "−"
	case OperatorMultiply:
		return "×"
	case OperatorDivide:
		return "÷"
	default:
		return ""
	}
}

// ParseOperator accepts operator names and their common symbols.
func ParseOperator(value string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "add", "+":
		return OperatorAdd, nil
	case "subtract", "-", "−":
		return OperatorSubtract, nil
	case "multiply", "*", "x", "×":
		return OperatorMultiply, nil
	case "divide", "/", "÷":
		return OperatorDivide, nil
	default:
		return "", apperrors.WithMetadata(
			apperrors.CodeOperationUnknown,
			"unknown operation "+value,
			map[string]string{"operation": value},
		)
	}
}

// Additive reports whether values can be summed.
func Additive(values []int) bool {
	return len(values) > 1
}

// Subtractive reports whether values[0] - values[1] is a legal move.
// Only two operands with a positive difference qualify.
func Subtractive(values []int) bool {
	return len(values) == 2 && values[0] > values[1]
}

// Multiplicative reports whether values can be multiplied.
func Multiplicative(values []int) bool {
	return len(values) > 1
}

// Divisible reports whether values[0] / values[1] is an exact integer
// division.
func Divisible(values []int) bool {
	return len(values) == 2 && values[1] != 0 && values[0]%values[1] == 0
}

// Allows reports whether the operator applies to values in the given order.
func (o Operator) Allows(values []int) bool {
	switch o {
	case OperatorAdd:
		return Additive(values)
	case OperatorSubtract:
		return Subtractive(values)
	case OperatorMultiply:
		return Multiplicative(values)
	case OperatorDivide:
		return Divisible(values)
	default:
		return false
	}
}

// Availability says which operators a selection enables.
type Availability struct {
	Add      bool `json:"add"`
	Subtract bool `json:"subtract"`
	Multiply bool `json:"multiply"`
	Divide   bool `json:"divide"`
}

// Available evaluates every operator against a selection. Selection order is
// irrelevant: values are checked largest first.
func Available(selected []int) Availability {
	sorted := SortDescending(selected)
	return Availability{
		Add:      Additive(sorted),
		Subtract: Subtractive(sorted),
		Multiply: Multiplicative(sorted),
		Divide:   Divisible(sorted),
	}
}

// Enabled returns the operators that apply, in display order.
func (a Availability) Enabled() []Operator {
	var out []Operator
	if a.Add {
		out = append(out, OperatorAdd)
	}
	if a.Subtract {
		out = append(out, OperatorSubtract)
	}
	if a.Multiply {
		out = append(out, OperatorMultiply)
	}
	if a.Divide {
		out = append(out, OperatorDivide)
	}
	return out
}

// SortDescending returns a sorted copy of values, largest first.
func SortDescending(values []int) []int {
	out := slices.Clone(values)
	slices.SortFunc(out, func(a, b int) int { return cmp.Compare(b, a) })
	return out
}

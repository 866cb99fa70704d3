// Package round implements a single puzzle round: its generation from a seed,
// the move state machine, and the persisted form of its history.
//
// A round keeps every operand snapshot it has passed through. history[0] is
// the initial draw and each successful move appends exactly one snapshot and
// one description, so undo and reset only ever trim the tail.
package round

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
)

// SlotCount is the number of operand slots a round displays.
const SlotCount = 6

// Round is the mutable state of one puzzle. A Round is owned by a single
// game session and is not safe for concurrent use.
type Round struct {
	target     int
	history    [][]int
	operations []string
}

// Move is an operator applied to a selection of tiles from the current
// snapshot.
type Move struct {
	Op       rules.Operator
	Operands []int
}

// Slot is one display position. Empty slots have Filled set to false.
type Slot struct {
	Value  int  `json:"value"`
	Filled bool `json:"filled"`
}

// New creates a round with the given target and initial tiles.
func New(target int, operands []int) *Round {
	return &Round{
		target:  target,
		history: [][]int{rules.SortDescending(operands)},
	}
}

// Target returns the number to reach.
func (r *Round) Target() int {
	return r.target
}

// Current returns a copy of the latest snapshot, sorted descending.
func (r *Round) Current() []int {
	return slices.Clone(r.current())
}

// Initial returns a copy of the initial draw.
func (r *Round) Initial() []int {
	return slices.Clone(r.history[0])
}

// History returns a copy of every snapshot, oldest first.
func (r *Round) History() [][]int {
	out := make([][]int, len(r.history))
	for i, snapshot := range r.history {
		out[i] = slices.Clone(snapshot)
	}
	return out
}

// Operations returns a copy of the move descriptions, oldest first.
func (r *Round) Operations() []string {
	return slices.Clone(r.operations)
}

// CanUndo reports whether any move has been made. Undo and reset are only
// meaningful when it is true.
func (r *Round) CanUndo() bool {
	return len(r.operations) > 0
}

// Solved reports whether the target is among the current tiles.
func (r *Round) Solved() bool {
	return slices.Contains(r.current(), r.target)
}

// Slots returns exactly SlotCount display slots for the current snapshot.
func (r *Round) Slots() []Slot {
	slots := make([]Slot, SlotCount)
	for i, value := range r.current() {
		if i >= SlotCount {
			break
		}
		slots[i] = Slot{Value: value, Filled: true}
	}
	return slots
}

// Add sums two or more tiles.
func (r *Round) Add(values ...int) bool {
	if !rules.Additive(values) {
		return false
	}
	sum := 0
	for _, v := range values {
		next, ok := addInt(sum, v)
		if !ok {
			return false
		}
		sum = next
	}
	return r.push(values, sum, describe(rules.OperatorAdd, rules.SortDescending(values), sum))
}

// Subtract takes subtrahend from minuend. The difference must be positive.
func (r *Round) Subtract(minuend, subtrahend int) bool {
	values := []int{minuend, subtrahend}
	if !rules.Subtractive(values) {
		return false
	}
	difference := minuend - subtrahend
	return r.push(values, difference, describe(rules.OperatorSubtract, values, difference))
}

// Multiply multiplies two or more tiles.
func (r *Round) Multiply(values ...int) bool {
	if !rules.Multiplicative(values) {
		return false
	}
	product := 1
	for _, v := range values {
		next, ok := mulInt(product, v)
		if !ok {
			return false
		}
		product = next
	}
	return r.push(values, product, describe(rules.OperatorMultiply, rules.SortDescending(values), product))
}

// Divide divides dividend by divisor. Only exact divisions are allowed.
func (r *Round) Divide(dividend, divisor int) bool {
	values := []int{dividend, divisor}
	if !rules.Divisible(values) {
		return false
	}
	quotient := dividend / divisor
	return r.push(values, quotient, describe(rules.OperatorDivide, values, quotient))
}

// Apply performs a move. Selection order does not matter: subtraction and
// division take the larger tile first and need exactly two tiles.
func (r *Round) Apply(move Move) bool {
	switch move.Op {
	case rules.OperatorAdd:
		return r.Add(move.Operands...)
	case rules.OperatorMultiply:
		return r.Multiply(move.Operands...)
	case rules.OperatorSubtract, rules.OperatorDivide:
		if len(move.Operands) != 2 {
			return false
		}
		sorted := rules.SortDescending(move.Operands)
		if move.Op == rules.OperatorSubtract {
			return r.Subtract(sorted[0], sorted[1])
		}
		return r.Divide(sorted[0], sorted[1])
	default:
		return false
	}
}

// Reset returns the round to its initial draw.
func (r *Round) Reset() {
	r.history = r.history[:1:1]
	r.operations = nil
}

// Undo drops the latest move. It reports false when no move is left.
func (r *Round) Undo() bool {
	if len(r.history) <= 1 {
		return false
	}
	r.history = r.history[:len(r.history)-1]
	r.operations = r.operations[:len(r.operations)-1]
	return true
}

func (r *Round) current() []int {
	return r.history[len(r.history)-1]
}

// push consumes the operands from the current snapshot and appends result.
// Each operand must match a distinct tile.
func (r *Round) push(consumed []int, result int, description string) bool {
	remaining, ok := removeTiles(r.current(), consumed)
	if !ok {
		return false
	}
	next := rules.SortDescending(append(remaining, result))
	r.history = append(r.history, next)
	r.operations = append(r.operations, description)
	return true
}

// removeTiles returns snapshot without one instance of each consumed value.
func removeTiles(snapshot, consumed []int) ([]int, bool) {
	want := make(map[int]int, len(consumed))
	for _, v := range consumed {
		want[v]++
	}
	remaining := make([]int, 0, len(snapshot))
	for _, v := range snapshot {
		if want[v] > 0 {
			want[v]--
			continue
		}
		remaining = append(remaining, v)
	}
	for _, n := range want {
		if n > 0 {
			return nil, false
		}
	}
	return remaining, true
}

func describe(op rules.Operator, operands []int, result int) string {
	parts := make([]string, len(operands))
	for i, v := range operands {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " "+op.Glyph()+" ") + " = " + strconv.Itoa(result)
}

func addInt(a, b int) (int, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}

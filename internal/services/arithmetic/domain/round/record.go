package round

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/tidwall/gjson"
)

// RestoreTargetMin is the smallest target a saved round may hold. It is one
// below TargetMin; saved data is accepted as long as it is three digits.
const RestoreTargetMin = 100

// Record is the saved form of a round.
type Record struct {
	RoundNumber int      `json:"roundNumber"`
	Target      int      `json:"target"`
	Operands    [][]int  `json:"operands"`
	Operations  []string `json:"operations"`
}

// Record captures the round for persistence.
func (r *Round) Record(roundNumber int) Record {
	operations := r.Operations()
	if operations == nil {
		operations = []string{}
	}
	return Record{
		RoundNumber: roundNumber,
		Target:      r.target,
		Operands:    r.History(),
		Operations:  operations,
	}
}

// Marshal encodes the record as JSON.
func (rec Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal round record: %w", err)
	}
	return data, nil
}

// ParseRecord decodes a saved round, checking the JSON type of every field
// before any value is trusted. Numbers must be integral.
func ParseRecord(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, invalid("record", "malformed json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Record{}, invalid("record", "not an object")
	}

	var rec Record
	var ok bool
	if rec.RoundNumber, ok = integer(root.Get("roundNumber")); !ok {
		return Record{}, invalid("roundNumber", "not an integer")
	}
	if rec.Target, ok = integer(root.Get("target")); !ok {
		return Record{}, invalid("target", "not an integer")
	}

	operands := root.Get("operands")
	if !operands.IsArray() {
		return Record{}, invalid("operands", "not an array")
	}
	for _, snapshot := range operands.Array() {
		if !snapshot.IsArray() {
			return Record{}, invalid("operands", "snapshot is not an array")
		}
		values := make([]int, 0, len(snapshot.Array()))
		for _, item := range snapshot.Array() {
			v, ok := integer(item)
			if !ok {
				return Record{}, invalid("operands", "snapshot holds a non-integer")
			}
			values = append(values, v)
		}
		rec.Operands = append(rec.Operands, values)
	}

	operations := root.Get("operations")
	if !operations.IsArray() {
		return Record{}, invalid("operations", "not an array")
	}
	rec.Operations = []string{}
	for _, item := range operations.Array() {
		if item.Type != gjson.String {
			return Record{}, invalid("operations", "description is not a string")
		}
		rec.Operations = append(rec.Operations, item.String())
	}
	return rec, nil
}

// Validate checks the ranges and consistency of a record.
func (rec Record) Validate() error {
	if rec.Target < RestoreTargetMin || rec.Target > TargetMax {
		return invalid("target", "out of range")
	}
	if len(rec.Operands) != len(rec.Operations)+1 {
		return invalid("operands", "history and descriptions disagree")
	}
	for _, op := range rec.Operations {
		if op == "" {
			return invalid("operations", "empty description")
		}
	}
	return nil
}

// Restore rebuilds a round from a validated record.
func Restore(rec Record) (*Round, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	history := make([][]int, len(rec.Operands))
	for i, snapshot := range rec.Operands {
		history[i] = rules.SortDescending(snapshot)
	}
	return &Round{
		target:     rec.Target,
		history:    history,
		operations: slices.Clone(rec.Operations),
	}, nil
}

// Load parses, validates and restores a saved round in one step.
func Load(data []byte) (*Round, Record, error) {
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, Record{}, err
	}
	r, err := Restore(rec)
	if err != nil {
		return nil, Record{}, err
	}
	return r, rec, nil
}

// integer accepts JSON numbers without a fractional part that fit in an int.
func integer(value gjson.Result) (int, bool) {
	if value.Type != gjson.Number {
		return 0, false
	}
	if value.Num != math.Trunc(value.Num) || math.IsInf(value.Num, 0) {
		return 0, false
	}
	if value.Num < math.MinInt64 || value.Num >= math.MaxInt64 {
		return 0, false
	}
	return int(value.Int()), true
}

func invalid(field, reason string) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidPersistedState,
		fmt.Sprintf("invalid saved round: %s %s", field, reason),
		map[string]string{"field": field},
	)
}

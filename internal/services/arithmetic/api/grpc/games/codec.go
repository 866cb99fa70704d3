package games

import (
	"fmt"
	"math"
	"strings"

	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared by requests and responses.
const (
	fieldGameID     = "gameId"
	fieldOp         = "op"
	fieldOperands   = "operands"
	fieldRound      = "round"
	fieldWins       = "wins"
	fieldTarget     = "target"
	fieldSlots      = "slots"
	fieldValue      = "value"
	fieldFilled     = "filled"
	fieldOperations = "operations"
	fieldSolved     = "solved"
	fieldCanUndo    = "canUndo"
	fieldView       = "view"
	fieldApplied    = "applied"
	fieldEnabled    = "enabled"
)

func gameRequest(gameID string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldGameID: structpb.NewStringValue(gameID),
	}}
}

func moveRequest(gameID string, move round.Move) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldGameID:   structpb.NewStringValue(gameID),
		fieldOp:       structpb.NewStringValue(string(move.Op)),
		fieldOperands: intList(move.Operands),
	}}
}

func operatorsRequest(selected []int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldOperands: intList(selected),
	}}
}

func stringField(in *structpb.Struct, name string) string {
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

// intsField reads a list of integers. A missing field is an empty list.
func intsField(in *structpb.Struct, name string) ([]int, error) {
	value, ok := in.GetFields()[name]
	if !ok {
		return nil, nil
	}
	list := value.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%s must be a list", name)
	}
	values := make([]int, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		number, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%s must hold numbers", name)
		}
		n := number.NumberValue
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > 1<<53 {
			return nil, fmt.Errorf("%s must hold integers", name)
		}
		values = append(values, int(n))
	}
	return values, nil
}

func intField(in *structpb.Struct, name string) int {
	return int(in.GetFields()[name].GetNumberValue())
}

func boolField(in *structpb.Struct, name string) bool {
	return in.GetFields()[name].GetBoolValue()
}

func intList(values []int) *structpb.Value {
	items := make([]*structpb.Value, len(values))
	for i, v := range values {
		items[i] = structpb.NewNumberValue(float64(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func stringList(values []string) *structpb.Value {
	items := make([]*structpb.Value, len(values))
	for i, v := range values {
		items[i] = structpb.NewStringValue(v)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func viewToStruct(view gameplay.View) *structpb.Struct {
	slots := make([]*structpb.Value, len(view.Slots))
	for i, slot := range view.Slots {
		slots[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldValue:  structpb.NewNumberValue(float64(slot.Value)),
			fieldFilled: structpb.NewBoolValue(slot.Filled),
		}})
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldGameID:     structpb.NewStringValue(view.GameID),
		fieldRound:      structpb.NewNumberValue(float64(view.Round)),
		fieldWins:       structpb.NewNumberValue(float64(view.Wins)),
		fieldTarget:     structpb.NewNumberValue(float64(view.Target)),
		fieldOperands:   intList(view.Operands),
		fieldSlots:      structpb.NewListValue(&structpb.ListValue{Values: slots}),
		fieldOperations: stringList(view.Operations),
		fieldSolved:     structpb.NewBoolValue(view.Solved),
		fieldCanUndo:    structpb.NewBoolValue(view.CanUndo),
	}}
}

func viewFromStruct(in *structpb.Struct) (gameplay.View, error) {
	if in == nil {
		return gameplay.View{}, fmt.Errorf("view is missing")
	}
	operands, err := intsField(in, fieldOperands)
	if err != nil {
		return gameplay.View{}, err
	}
	if operands == nil {
		operands = []int{}
	}
	view := gameplay.View{
		GameID:     in.GetFields()[fieldGameID].GetStringValue(),
		Round:      intField(in, fieldRound),
		Wins:       intField(in, fieldWins),
		Target:     intField(in, fieldTarget),
		Operands:   operands,
		Slots:      []round.Slot{},
		Operations: []string{},
		Solved:     boolField(in, fieldSolved),
		CanUndo:    boolField(in, fieldCanUndo),
	}
	for _, item := range in.GetFields()[fieldSlots].GetListValue().GetValues() {
		slot := item.GetStructValue()
		view.Slots = append(view.Slots, round.Slot{
			Value:  intField(slot, fieldValue),
			Filled: boolField(slot, fieldFilled),
		})
	}
	for _, item := range in.GetFields()[fieldOperations].GetListValue().GetValues() {
		view.Operations = append(view.Operations, item.GetStringValue())
	}
	return view, nil
}

func resultToStruct(result gameplay.Result) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldView:    structpb.NewStructValue(viewToStruct(result.View)),
		fieldApplied: structpb.NewBoolValue(result.Applied),
	}}
}

func resultFromStruct(in *structpb.Struct) (gameplay.Result, error) {
	view, err := viewFromStruct(in.GetFields()[fieldView].GetStructValue())
	if err != nil {
		return gameplay.Result{}, err
	}
	return gameplay.Result{View: view, Applied: boolField(in, fieldApplied)}, nil
}

func availabilityToStruct(availability rules.Availability) *structpb.Struct {
	enabled := availability.Enabled()
	names := make([]string, len(enabled))
	for i, op := range enabled {
		names[i] = string(op)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		string(rules.OperatorAdd):      structpb.NewBoolValue(availability.Add),
		string(rules.OperatorSubtract): structpb.NewBoolValue(availability.Subtract),
		string(rules.OperatorMultiply): structpb.NewBoolValue(availability.Multiply),
		string(rules.OperatorDivide):   structpb.NewBoolValue(availability.Divide),
		fieldEnabled:                   stringList(names),
	}}
}

func availabilityFromStruct(in *structpb.Struct) rules.Availability {
	return rules.Availability{
		Add:      boolField(in, string(rules.OperatorAdd)),
		Subtract: boolField(in, string(rules.OperatorSubtract)),
		Multiply: boolField(in, string(rules.OperatorMultiply)),
		Divide:   boolField(in, string(rules.OperatorDivide)),
	}
}

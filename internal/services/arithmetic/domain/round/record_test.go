package round

import (
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
)

func TestRecordRoundTrip(t *testing.T) {
	r, err := Generate("g0")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	r.Add(50, 8)
	r.Multiply(6, 3)

	data, err := r.Record(1).Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, rec, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.RoundNumber != 1 {
		t.Fatalf("round number = %d, want 1", rec.RoundNumber)
	}
	if restored.Target() != r.Target() ||
		!reflect.DeepEqual(restored.History(), r.History()) ||
		!reflect.DeepEqual(restored.Operations(), r.Operations()) {
		t.Fatalf("restored round differs: %+v", restored.Record(1))
	}
	if !restored.Undo() || !reflect.DeepEqual(restored.Current(), []int{58, 7, 6, 4, 3}) {
		t.Fatalf("expected undo on restored round, current = %v", restored.Current())
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	data, err := New(500, []int{3, 2}).Record(4).Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"roundNumber":4,"target":500,"operands":[[3,2]],"operations":[]}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}
}

func TestParseRecordRejectsShape(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{name: "malformed", data: `{"target":`, field: "record"},
		{name: "array root", data: `[]`, field: "record"},
		{name: "missing round number", data: `{"target":500,"operands":[[1]],"operations":[]}`, field: "roundNumber"},
		{name: "string round number", data: `{"roundNumber":"1","target":500,"operands":[[1]],"operations":[]}`, field: "roundNumber"},
		{name: "fractional target", data: `{"roundNumber":1,"target":500.5,"operands":[[1]],"operations":[]}`, field: "target"},
		{name: "null target", data: `{"roundNumber":1,"target":null,"operands":[[1]],"operations":[]}`, field: "target"},
		{name: "operands object", data: `{"roundNumber":1,"target":500,"operands":{},"operations":[]}`, field: "operands"},
		{name: "snapshot not array", data: `{"roundNumber":1,"target":500,"operands":[1],"operations":[]}`, field: "operands"},
		{name: "non-integer tile", data: `{"roundNumber":1,"target":500,"operands":[[1.5]],"operations":[]}`, field: "operands"},
		{name: "string tile", data: `{"roundNumber":1,"target":500,"operands":[["1"]],"operations":[]}`, field: "operands"},
		{name: "operations missing", data: `{"roundNumber":1,"target":500,"operands":[[1]]}`, field: "operations"},
		{name: "operation not string", data: `{"roundNumber":1,"target":500,"operands":[[1],[2]],"operations":[3]}`, field: "operations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.data))
			if !apperrors.IsCode(err, apperrors.CodeInvalidPersistedState) {
				t.Fatalf("expected %s, got %v", apperrors.CodeInvalidPersistedState, err)
			}
			if got := apperrors.GetMetadata(err)["field"]; got != tt.field {
				t.Fatalf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestParseRecordAcceptsIntegralFloats(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"roundNumber":2,"target":5e2,"operands":[[10.0,3]],"operations":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Target != 500 || !reflect.DeepEqual(rec.Operands, [][]int{{10, 3}}) {
		t.Fatalf("record = %+v", rec)
	}
}

func TestValidate(t *testing.T) {
	base := func() Record {
		return Record{
			RoundNumber: 1,
			Target:      500,
			Operands:    [][]int{{10, 5}, {15}},
			Operations:  []string{"10 + 5 = 15"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Record)
		ok     bool
	}{
		{name: "valid", mutate: func(*Record) {}, ok: true},
		{name: "target lower bound accepted", mutate: func(r *Record) { r.Target = 100 }, ok: true},
		{name: "target upper bound accepted", mutate: func(r *Record) { r.Target = 999 }, ok: true},
		{name: "target below range", mutate: func(r *Record) { r.Target = 99 }},
		{name: "target above range", mutate: func(r *Record) { r.Target = 1000 }},
		{name: "history too long", mutate: func(r *Record) { r.Operands = append(r.Operands, []int{1}) }},
		{name: "history too short", mutate: func(r *Record) { r.Operands = r.Operands[:1] }},
		{name: "empty description", mutate: func(r *Record) { r.Operations[0] = "" }},
		{name: "empty history", mutate: func(r *Record) { r.Operands = nil; r.Operations = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base()
			tt.mutate(&rec)
			err := rec.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !apperrors.IsCode(err, apperrors.CodeInvalidPersistedState) {
				t.Fatalf("expected %s, got %v", apperrors.CodeInvalidPersistedState, err)
			}
			if _, err := Restore(rec); (err == nil) != tt.ok {
				t.Fatalf("Restore error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestRestoreSortsSnapshots(t *testing.T) {
	r, err := Restore(Record{Target: 123, Operands: [][]int{{3, 10, 5}}, Operations: []string{}})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := r.Current(); !reflect.DeepEqual(got, []int{10, 5, 3}) {
		t.Fatalf("current = %v, want [10 5 3]", got)
	}
}

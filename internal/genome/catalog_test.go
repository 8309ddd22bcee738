package genome

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"edna/internal/dice"
)

func TestRegisterAndLookup(t *testing.T) {
	resetCatalogForTests()
	t.Cleanup(resetCatalogForTests)

	if err := Register(critterGenome); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(critterGenome); !errors.Is(err, ErrTypeExists) {
		t.Fatalf("duplicate registration: %v", err)
	}

	ops, err := LookupType("Critter")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ops.Name != "Critter" || len(ops.Fields) != 6 {
		t.Fatalf("ops = %s with %d fields", ops.Name, len(ops.Fields))
	}

	if _, err := LookupType("Ghost"); !errors.Is(err, ErrTypeNotFound) {
		t.Fatalf("unknown lookup: %v", err)
	}
}

func TestListTypesSorted(t *testing.T) {
	resetCatalogForTests()
	t.Cleanup(resetCatalogForTests)

	MustRegister(critterGenome)
	MustRegister(lensGenome)

	if diff := cmp.Diff([]string{"Critter", "Lens"}, ListTypes()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestErasedOpsRoundTrip(t *testing.T) {
	resetCatalogForTests()
	t.Cleanup(resetCatalogForTests)
	MustRegister(critterGenome)

	ops, err := LookupType("Critter")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	d := dice.NewFast(61)
	payload, err := ops.Random(d)
	if err != nil {
		t.Fatalf("random: %v", err)
	}

	dist, err := ops.Distance(payload, payload)
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if dist != 0 {
		t.Fatalf("self distance = %v", dist)
	}

	eq, err := ops.Equal(payload, payload)
	if err != nil || !eq {
		t.Fatalf("self equality = %v, %v", eq, err)
	}

	mutated, err := ops.Mutate(payload, d)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	child, err := ops.Cross(payload, mutated, d)
	if err != nil {
		t.Fatalf("cross: %v", err)
	}

	var sb strings.Builder
	if err := ops.Show(&sb, child); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(sb.String(), "weight: ") {
		t.Fatalf("show output:\n%s", sb.String())
	}

	legs, err := ops.FieldValue(payload, "legs")
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	if legs != "2" && legs != "3" {
		t.Fatalf("legs = %q", legs)
	}
}

func TestErasedCheckKeepsRawValues(t *testing.T) {
	resetCatalogForTests()
	t.Cleanup(resetCatalogForTests)
	MustRegister(critterGenome)

	ops, err := LookupType("Critter")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	payload, err := ops.Random(dice.NewFast(67))
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	obj["weight"] = json.RawMessage("42")
	mangled, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	repaired, ok, err := ops.Check(mangled)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("out-of-range payload passed check")
	}
	if err := json.Unmarshal(repaired, &obj); err != nil {
		t.Fatalf("unmarshal repaired: %v", err)
	}
	if string(obj["weight"]) != "4" {
		t.Fatalf("weight = %s, want 4", obj["weight"])
	}
}

func TestErasedAggregate(t *testing.T) {
	resetCatalogForTests()
	t.Cleanup(resetCatalogForTests)
	MustRegister(critterGenome)

	ops, err := LookupType("Critter")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	d := dice.NewFast(71)
	payloads := make([]json.RawMessage, 3)
	for i := range payloads {
		payloads[i], err = ops.Random(d)
		if err != nil {
			t.Fatalf("random: %v", err)
		}
	}

	var sb strings.Builder
	if err := ops.Aggregate(&sb, payloads, 0); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !strings.Contains(sb.String(), "legs: ") {
		t.Fatalf("aggregate output:\n%s", sb.String())
	}

	if err := ops.Aggregate(&sb, payloads[:1], 0); err == nil {
		t.Fatal("single payload accepted")
	}
}

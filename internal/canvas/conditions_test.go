package canvas

import "testing"

func TestValidateCases_Valid(t *testing.T) {
	n := &Node{ID: "br", Type: NodeTypeBranch, Data: NodeData{
		Cases: []BranchCase{
			{ID: "case1", Condition: `sentiment == "positive"`},
			{ID: "case2", Condition: "score > 0.5"},
			{ID: "case3"}, // empty condition means always taken
		},
	}}
	if err := ValidateCases(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCases_BadExpression(t *testing.T) {
	n := &Node{ID: "br", Type: NodeTypeBranch, Data: NodeData{
		Cases: []BranchCase{{ID: "case1", Condition: "score >"}},
	}}
	if err := ValidateCases(n); err == nil {
		t.Fatal("expected compile error for truncated expression")
	}
}

func TestValidateCases_DuplicateID(t *testing.T) {
	n := &Node{ID: "br", Type: NodeTypeBranch, Data: NodeData{
		Cases: []BranchCase{{ID: "case1"}, {ID: "case1"}},
	}}
	if err := ValidateCases(n); err == nil {
		t.Fatal("expected error for duplicate case id")
	}
}

func TestValidateCases_ReservedID(t *testing.T) {
	n := &Node{ID: "br", Type: NodeTypeBranch, Data: NodeData{
		Cases: []BranchCase{{ID: DefaultHandle}},
	}}
	if err := ValidateCases(n); err == nil {
		t.Fatal("expected error for reserved case id")
	}
}

func TestValidateCases_NonBranchingIsNoop(t *testing.T) {
	n := &Node{ID: "llm", Type: NodeTypeLLM}
	if err := ValidateCases(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package tablestore

import "testing"

func TestEqRendersQuotedLiteral(t *testing.T) {
	got := Eq("Status", "pending").Render()
	want := `CurrentValue.[Status] = "pending"`
	if got != want {
		t.Fatalf("render mismatch: got %q want %q", got, want)
	}
}

func TestEqEscapesQuotesAndBackslashes(t *testing.T) {
	got := Eq("Title", `say "hi" \now`).Render()
	want := `CurrentValue.[Title] = "say \"hi\" \\now"`
	if got != want {
		t.Fatalf("render mismatch: got %q want %q", got, want)
	}
}

func TestAndSkipsNilParts(t *testing.T) {
	if And() != nil {
		t.Fatal("empty And should be nil")
	}
	single := Eq("A", "1")
	if And(nil, single, nil) != single {
		t.Fatal("single-part And should collapse to the part")
	}
	got := And(Eq("A", "1"), Eq("B", "2")).Render()
	want := `CurrentValue.[A] = "1" AND CurrentValue.[B] = "2"`
	if got != want {
		t.Fatalf("render mismatch: got %q want %q", got, want)
	}
}

func TestMatchesEvaluatesLocally(t *testing.T) {
	fields := map[string]any{"Status": "pending", "User ID": "emp1", "Weight": float64(30)}

	if !Eq("Status", "pending").Matches(fields) {
		t.Fatal("expected status match")
	}
	if Eq("Status", "approved").Matches(fields) {
		t.Fatal("unexpected status match")
	}
	if !And(Eq("Status", "pending"), Eq("User ID", "emp1")).Matches(fields) {
		t.Fatal("expected conjunction match")
	}
	if And(Eq("Status", "pending"), Eq("User ID", "emp2")).Matches(fields) {
		t.Fatal("unexpected conjunction match")
	}
	if !Eq("Weight", "30").Matches(fields) {
		t.Fatal("expected numeric field coercion to match")
	}
}

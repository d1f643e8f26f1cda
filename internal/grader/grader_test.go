package grader

import (
	"testing"

	"github.com/stellarlinkco/mathbench/internal/dataset"
)

func mathQ(id, expected string) *dataset.Question {
	return &dataset.Question{ID: id, Dataset: "math", Subject: dataset.SubjectMath, Expected: expected}
}

func physicsQ(id, expected string) *dataset.Question {
	return &dataset.Question{ID: id, Dataset: "physics", Subject: dataset.SubjectPhysics, Expected: expected}
}

func TestGrade_NumericTolerance(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "3"), "After simplifying, the answer is 3.0001")
	if !rec.Correct {
		t.Fatalf("3.0001 vs 3: expected correct, got %+v", rec)
	}
	if rec.Method != MethodNumeric {
		t.Fatalf("method: got %q want %q", rec.Method, MethodNumeric)
	}

	rec = Grade(mathQ("q1", "3"), "The answer is 3.1")
	if rec.Correct {
		t.Fatalf("3.1 vs 3: expected incorrect")
	}
}

func TestGrade_NumericNearZero(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "0"), "The answer is 0.0000001")
	if !rec.Correct {
		t.Fatalf("near-zero absolute tolerance: got %+v", rec)
	}

	rec = Grade(mathQ("q1", "0"), "The answer is 0.01")
	if rec.Correct {
		t.Fatalf("0.01 vs 0: expected incorrect")
	}
}

func TestGrade_SymbolicEquivalence(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "2(x+1)"), "2x+2")
	if !rec.Correct {
		t.Fatalf("2x+2 vs 2(x+1): expected correct, got %+v", rec)
	}
	if rec.Method != MethodSymbolic {
		t.Fatalf("method: got %q want %q", rec.Method, MethodSymbolic)
	}

	rec = Grade(mathQ("q1", "x+2"), "x^2")
	if rec.Correct {
		t.Fatalf("x^2 vs x+2: expected incorrect")
	}
}

func TestGrade_SymbolicStructuralMatch(t *testing.T) {
	t.Parallel()

	// sinh is unknown to the evaluator; structurally identical text must
	// still grade as equal.
	ok, err := samplingEqual("sinh(x) + 1", "sinh(x)+1")
	if err != nil {
		t.Fatalf("samplingEqual: %v", err)
	}
	if !ok {
		t.Fatalf("sinh(x)+1 vs sinh(x)+1: expected equal")
	}

	ok, err = samplingEqual("sinh(x)+1", "cosh(x)+1")
	if err != nil {
		t.Fatalf("samplingEqual: %v", err)
	}
	if ok {
		t.Fatalf("sinh(x)+1 vs cosh(x)+1: expected unequal")
	}
}

func TestGrade_ScientificNotation(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"2e3", "2e3"},
		{"2e+3", "2e+3"},
		{"5e-4x", "5e-4*x"},
		{"2x", "2*x"},
		{"x2", "x*2"},
		{"2e", "2*e"}, // bare Euler constant, not an exponent
	} {
		if got := normalizeExpression(tc.in); got != tc.want {
			t.Fatalf("normalizeExpression(%q): got %q want %q", tc.in, got, tc.want)
		}
	}

	rec := Grade(mathQ("q1", "2e3*x + 1"), "The answer is 2000x + 1")
	if !rec.Correct {
		t.Fatalf("2000x+1 vs 2e3*x+1: expected correct, got %+v", rec)
	}
}

func TestGrade_SymbolicFromProse(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "x^2+1"), "Substituting back we find the function is x^2 + 1")
	if !rec.Correct {
		t.Fatalf("expected correct, got %+v", rec)
	}
}

func TestGrade_BoxedExtraction(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "42"), `Working through it: 6*7 = 42, so \boxed{42}`)
	if !rec.Correct {
		t.Fatalf("boxed: got %+v", rec)
	}
	if rec.Extracted != "42" {
		t.Fatalf("extracted: got %q", rec.Extracted)
	}
}

func TestGrade_LastCandidateWins(t *testing.T) {
	t.Parallel()

	completion := "First I guessed the answer is 7.\nBut re-checking, the answer is 12."
	rec := Grade(mathQ("q1", "12"), completion)
	if !rec.Correct {
		t.Fatalf("last answer marker should win: got %+v", rec)
	}
}

func TestGrade_NoAnswerFound(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "4"), "I am not sure how to approach this problem")
	if rec.Correct {
		t.Fatalf("expected incorrect")
	}
	if rec.Method != MethodNoAnswer {
		t.Fatalf("method: got %q want %q", rec.Method, MethodNoAnswer)
	}
}

func TestGrade_BadGroundTruth(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", ""), "The answer is 4")
	if rec.Correct || rec.Method != MethodBadGroundTruth {
		t.Fatalf("empty expected: got %+v", rec)
	}
}

func TestGrade_ExactString(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "undefined"), "The answer is  UNDEFINED")
	if !rec.Correct {
		t.Fatalf("loose string match: got %+v", rec)
	}
	if rec.Method != MethodExact {
		t.Fatalf("method: got %q want %q", rec.Method, MethodExact)
	}
}

func TestGrade_PhysicsUnits(t *testing.T) {
	t.Parallel()

	rec := Grade(physicsQ("p1", "6 N"), "F = ma = 2 * 3 = 6 newtons")
	if !rec.Correct {
		t.Fatalf("unit word: got %+v", rec)
	}

	rec = Grade(physicsQ("p2", "3e8 m"), "That distance is 300000 km")
	if !rec.Correct {
		t.Fatalf("SI prefix rescaling: got %+v", rec)
	}

	rec = Grade(physicsQ("p3", "6 N"), "The force is 6000 N")
	if rec.Correct {
		t.Fatalf("wrong magnitude: expected incorrect")
	}
}

func TestGrade_Fraction(t *testing.T) {
	t.Parallel()

	rec := Grade(mathQ("q1", "0.875"), "The answer is 7/8")
	if !rec.Correct {
		t.Fatalf("fraction notation: got %+v", rec)
	}
}

func TestGrade_Deterministic(t *testing.T) {
	t.Parallel()

	q := mathQ("q1", "2(x+1)")
	a := Grade(q, "2x+2")
	b := Grade(q, "2x+2")
	if a != b {
		t.Fatalf("grading not deterministic: %+v vs %+v", a, b)
	}
}

func TestFailureRecord(t *testing.T) {
	t.Parallel()

	rec := FailureRecord(mathQ("q9", "4"), "rate_limited after 3 attempts")
	if rec.Correct {
		t.Fatalf("failure record marked correct")
	}
	if rec.Method != MethodModelFailure {
		t.Fatalf("method: got %q", rec.Method)
	}
	if rec.FailureReason == "" {
		t.Fatalf("missing failure reason")
	}
}

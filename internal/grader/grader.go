package grader

import (
	"strings"

	"github.com/stellarlinkco/mathbench/internal/client"
	"github.com/stellarlinkco/mathbench/internal/dataset"
)

// Method names the comparison that produced a verdict. Recorded for
// auditability; tests build oracles from it.
type Method string

const (
	MethodNumeric        Method = "numeric"
	MethodSymbolic       Method = "symbolic-sampling"
	MethodExact          Method = "exact-string"
	MethodNoAnswer       Method = "no-answer-found"
	MethodBadGroundTruth Method = "bad-ground-truth"
	MethodModelFailure   Method = "model-failure"
)

// GradedRecord is the immutable per-question output of a run.
type GradedRecord struct {
	QuestionID    string                   `json:"question_id"`
	Dataset       string                   `json:"dataset"`
	Subject       dataset.Subject          `json:"subject"`
	Extracted     string                   `json:"extracted"`
	Expected      string                   `json:"expected"`
	Correct       bool                     `json:"correct"`
	Method        Method                   `json:"method"`
	FailureReason string                   `json:"failure_reason,omitempty"`
	FromCache     bool                     `json:"from_cache,omitempty"`
	Uncached      bool                     `json:"uncached,omitempty"` // completion could not be persisted; a later run recomputes
	Completion    *client.CompletionResult `json:"completion,omitempty"`
}

// Grade parses the completion for a final answer and compares it against
// the question's expected answer. It never returns an error: grading
// ambiguity and bad ground truth fail closed to an incorrect record so one
// bad row cannot abort a run. Deterministic for identical inputs.
func Grade(q *dataset.Question, completion string) GradedRecord {
	rec := GradedRecord{
		QuestionID: q.ID,
		Dataset:    q.Dataset,
		Subject:    q.Subject,
		Expected:   q.Expected,
	}

	expected := strings.TrimSpace(q.Expected)
	if expected == "" {
		rec.Method = MethodBadGroundTruth
		rec.FailureReason = "empty expected answer"
		return rec
	}

	kind := classifyAnswer(expected, q.Subject)

	candidate, ok := extractCandidate(completion, kind)
	if !ok {
		rec.Method = MethodNoAnswer
		return rec
	}
	rec.Extracted = candidate

	switch kind {
	case answerNumeric:
		want, ok := parseQuantity(expected, q.Subject)
		if !ok {
			rec.Method = MethodBadGroundTruth
			rec.FailureReason = "unparseable expected number"
			return rec
		}
		rec.Method = MethodNumeric
		got, ok := parseQuantity(candidate, q.Subject)
		if !ok {
			return rec
		}
		rec.Correct = numericEqual(got, want)
		return rec

	case answerExpression:
		rec.Method = MethodSymbolic
		equal, err := samplingEqual(candidate, expected)
		if err != nil {
			if expressionMalformed(expected) {
				rec.Method = MethodBadGroundTruth
				rec.FailureReason = "unparseable expected expression"
			}
			return rec
		}
		rec.Correct = equal
		return rec

	default:
		rec.Method = MethodExact
		rec.Correct = looseEqual(candidate, expected)
		return rec
	}
}

// FailureRecord is the terminal record for a question whose model call
// exhausted its retry budget. The question stays in the output set so a
// missing row can never inflate accuracy.
func FailureRecord(q *dataset.Question, reason string) GradedRecord {
	return GradedRecord{
		QuestionID:    q.ID,
		Dataset:       q.Dataset,
		Subject:       q.Subject,
		Expected:      q.Expected,
		Method:        MethodModelFailure,
		FailureReason: reason,
	}
}

// looseEqual is case and whitespace insensitive exact match.
func looseEqual(a, b string) bool {
	return strings.EqualFold(collapseSpace(a), collapseSpace(b))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package score

import (
	"math"
	"time"

	"github.com/stellarlinkco/mathbench/internal/dataset"
	"github.com/stellarlinkco/mathbench/internal/grader"
)

// ModelScore is the aggregate for one (model, dataset) pair. It is derived
// wholesale from the record set on demand and never mutated in place. The
// JSON field names are the boundary contract leaderboard consumers rely on.
type ModelScore struct {
	ModelID        string        `json:"model_id"`
	Dataset        string        `json:"dataset"`
	Score          float64       `json:"score"`
	MathScore      float64       `json:"math_score"`
	PhysicsScore   float64       `json:"physics_score"`
	TotalQuestions int           `json:"total_questions"`
	CorrectCount   int           `json:"correct_count"`
	FailedCount    int           `json:"failed_count"`
	CachedCount    int           `json:"cached_count"`
	TotalTokens    int           `json:"total_tokens"`
	MeanTokens     float64       `json:"mean_tokens"`
	EvaluationTime time.Duration `json:"evaluation_time"`
}

// Aggregate reduces a record set to a ModelScore. The empty set yields NaN
// scores, a defined sentinel rather than a divide-by-zero.
func Aggregate(modelID, ds string, records []grader.GradedRecord, elapsed time.Duration) ModelScore {
	out := ModelScore{
		ModelID:        modelID,
		Dataset:        ds,
		TotalQuestions: len(records),
		EvaluationTime: elapsed,
	}

	var (
		mathCorrect, mathTotal       int
		physicsCorrect, physicsTotal int
	)

	for _, rec := range records {
		if rec.Correct {
			out.CorrectCount++
		}
		if rec.Method == grader.MethodModelFailure {
			out.FailedCount++
		}
		if rec.FromCache {
			out.CachedCount++
		}
		if rec.Completion != nil {
			out.TotalTokens += rec.Completion.InputTokens + rec.Completion.OutputTokens
		}

		switch rec.Subject {
		case dataset.SubjectPhysics:
			physicsTotal++
			if rec.Correct {
				physicsCorrect++
			}
		default:
			mathTotal++
			if rec.Correct {
				mathCorrect++
			}
		}
	}

	out.Score = ratio(out.CorrectCount, out.TotalQuestions)
	out.MathScore = ratio(mathCorrect, mathTotal)
	out.PhysicsScore = ratio(physicsCorrect, physicsTotal)
	out.MeanTokens = ratio(out.TotalTokens, out.TotalQuestions)
	return out
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return math.NaN()
	}
	return float64(n) / float64(d)
}

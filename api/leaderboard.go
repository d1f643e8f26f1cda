package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/mathbench/internal/leaderboard"
)

// entryView is the JSON shape of a leaderboard entry. Subject scores are
// pointers so the NaN sentinel renders as null instead of breaking the
// encoder.
type entryView struct {
	ModelID        string    `json:"model_id"`
	Dataset        string    `json:"dataset"`
	Score          float64   `json:"score"`
	MathScore      *float64  `json:"math_score"`
	PhysicsScore   *float64  `json:"physics_score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	FailedCount    int       `json:"failed_count"`
	CachedCount    int       `json:"cached_count"`
	TotalTokens    int       `json:"total_tokens"`
	EvaluationTime float64   `json:"evaluation_time"` // seconds
	EvalDate       time.Time `json:"eval_date"`
}

func toEntryViews(entries []leaderboard.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			ModelID:        e.ModelID,
			Dataset:        e.Dataset,
			Score:          e.Score,
			MathScore:      optionalScore(e.MathScore),
			PhysicsScore:   optionalScore(e.PhysicsScore),
			TotalQuestions: e.TotalQuestions,
			CorrectCount:   e.CorrectCount,
			FailedCount:    e.FailedCount,
			CachedCount:    e.CachedCount,
			TotalTokens:    e.TotalTokens,
			EvaluationTime: e.EvalTime.Seconds(),
			EvalDate:       e.EvalDate,
		})
	}
	return out
}

func optionalScore(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	dataset := strings.TrimSpace(c.Query("dataset"))
	if dataset == "" {
		respondError(c, http.StatusBadRequest, errors.New("dataset is required"))
		return
	}

	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	entries, err := s.lbStore.GetLeaderboard(c.Request.Context(), dataset, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, toEntryViews(entries))
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	model := strings.TrimSpace(c.Query("model"))
	dataset := strings.TrimSpace(c.Query("dataset"))
	if model == "" || dataset == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and dataset are required"))
		return
	}

	entries, err := s.lbStore.GetModelHistory(c.Request.Context(), model, dataset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, toEntryViews(entries))
}

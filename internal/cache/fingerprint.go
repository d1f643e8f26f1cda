package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint is the deterministic cache key for one evaluation:
// identical fingerprint means identical expected completion.
type Fingerprint string

type fingerprintInput struct {
	ModelID        string  `json:"model_id"`
	ModelName      string  `json:"model_name"`
	SystemPrompt   string  `json:"system_prompt"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	QuestionID     string  `json:"question_id"`
	DatasetVersion string  `json:"dataset_version"`
}

// NewFingerprint derives the cache key from the model configuration and
// question identity. Pure function of its inputs; struct encoding keeps the
// field order fixed so the digest is stable across runs.
func NewFingerprint(modelID, modelName, systemPrompt string, temperature float64, maxTokens int, questionID, datasetVersion string) Fingerprint {
	in := fingerprintInput{
		ModelID:        modelID,
		ModelName:      modelName,
		SystemPrompt:   systemPrompt,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		QuestionID:     questionID,
		DatasetVersion: datasetVersion,
	}

	b, err := json.Marshal(in)
	if err != nil {
		// Marshal of a flat struct of scalars cannot fail.
		panic("cache: marshal fingerprint: " + err.Error())
	}

	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

func (f Fingerprint) String() string { return string(f) }

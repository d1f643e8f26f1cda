package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in sample sets so the binary can run without data files.

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sampleDataset(name, version string, limit int) (*Dataset, error) {
	qs, ok := samples[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("dataset: unknown dataset %q", name)
	}
	return &Dataset{
		Name:      name,
		Version:   strings.TrimSpace(version),
		Questions: takeFirstN(qs, limit),
	}, nil
}

var samples = map[string][]Question{
	"math": {
		{
			ID:       "math-sample-1",
			Dataset:  "math",
			Subject:  SubjectMath,
			Prompt:   "A train travels 120 km in 1.5 hours. What is its average speed in km/h?",
			Expected: "80",
		},
		{
			ID:       "math-sample-2",
			Dataset:  "math",
			Subject:  SubjectMath,
			Prompt:   "Expand and simplify: 2(x+1).",
			Expected: "2x+2",
		},
		{
			ID:       "math-sample-3",
			Dataset:  "math",
			Subject:  SubjectMath,
			Prompt:   "What is 7/8 as a decimal?",
			Expected: "0.875",
		},
		{
			ID:       "math-sample-4",
			Dataset:  "math",
			Subject:  SubjectMath,
			Prompt:   "Solve for x: 3x - 9 = 0.",
			Expected: "3",
		},
	},
	"physics": {
		{
			ID:       "physics-sample-1",
			Dataset:  "physics",
			Subject:  SubjectPhysics,
			Prompt:   "A 2 kg mass accelerates at 3 m/s^2. What net force acts on it, in newtons?",
			Expected: "6 N",
		},
		{
			ID:       "physics-sample-2",
			Dataset:  "physics",
			Subject:  SubjectPhysics,
			Prompt:   "Light travels 300000 km in one second. Express this distance in meters.",
			Expected: "3e8 m",
		},
		{
			ID:       "physics-sample-3",
			Dataset:  "physics",
			Subject:  SubjectPhysics,
			Prompt:   "A capacitor stores 0.5 J at 10 V. What is its capacitance in farads?",
			Expected: "0.01",
		},
	},
}

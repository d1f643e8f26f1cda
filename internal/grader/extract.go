package grader

import (
	"regexp"
	"strings"

	"github.com/stellarlinkco/mathbench/internal/dataset"
)

type answerKind int

const (
	answerExact answerKind = iota
	answerNumeric
	answerExpression
)

func classifyAnswer(expected string, subject dataset.Subject) answerKind {
	if _, ok := parseQuantity(expected, subject); ok {
		return answerNumeric
	}
	if looksLikeExpression(expected) {
		return answerExpression
	}
	return answerExact
}

var (
	boxedRe  = regexp.MustCompile(`\\boxed\{([^{}]+)\}`)
	tagRe    = regexp.MustCompile(`(?is)<answer>(.*?)</answer>`)
	markerRe = regexp.MustCompile(`(?i)(?:final answer is|the answer is|answer is|answer:|ответ:)\s*([^\n]+)`)
	gsmRe    = regexp.MustCompile(`####\s*([^\n]+)`)

	// Terms joined by arithmetic operators; the fallback for
	// expression-valued answers.
	exprRe = regexp.MustCompile(`[A-Za-z0-9().]+(?:\s*[\^+\-*/]\s*[A-Za-z0-9().]+)+`)

	exprCharsetRe = regexp.MustCompile(`^[0-9A-Za-z^+\-*/().,\s]+$`)
)

// extractCandidate pulls the final stated answer out of a completion.
// Delimited forms win over heuristics; when a strategy matches more than
// once the last occurrence is taken as the final stated answer.
func extractCandidate(completion string, kind answerKind) (string, bool) {
	text := strings.TrimSpace(completion)
	if text == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{boxedRe, tagRe, markerRe, gsmRe} {
		ms := re.FindAllStringSubmatch(text, -1)
		if len(ms) == 0 {
			continue
		}
		c := cleanCandidate(ms[len(ms)-1][1])
		if c != "" {
			return c, true
		}
	}

	if kind == answerExpression {
		if ms := exprRe.FindAllString(text, -1); len(ms) > 0 {
			if c := cleanCandidate(ms[len(ms)-1]); c != "" {
				return c, true
			}
		}
		// A single-term expression ("2x") has no operator for the regex;
		// fall back to the last non-empty line.
		if line := lastLine(text); exprCharsetRe.MatchString(line) {
			if c := cleanCandidate(line); c != "" {
				return c, true
			}
		}
		return "", false
	}

	if n, ok := lastNumber(text); ok {
		return n, true
	}

	if kind == answerExact {
		if c := cleanCandidate(lastLine(text)); c != "" {
			return c, true
		}
	}
	return "", false
}

func cleanCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSuffix(s, ",")
	return strings.TrimSpace(s)
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

var numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// lastNumber finds the final number stated in the text, including a
// trailing unit token so physics answers keep their magnitude.
func lastNumber(text string) (string, bool) {
	locs := numberRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}

	loc := locs[len(locs)-1]
	num := strings.ReplaceAll(text[loc[0]:loc[1]], ",", "")

	rest := text[loc[1]:]
	if unit, ok := leadingUnit(rest); ok {
		num += " " + unit
	}
	return num, true
}

func looksLikeExpression(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !exprCharsetRe.MatchString(s) {
		return false
	}
	hasLetter := strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasOp := strings.ContainsAny(s, "^+-*/")
	hasDigit := strings.ContainsAny(s, "0123456789")
	return hasLetter && (hasOp || hasDigit)
}

package grader

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Symbolic equality is undecidable in general. Both expressions are
// evaluated at a fixed set of sample points instead; equal values at every
// point is taken as equivalence. This is a heuristic: pathological pairs
// that agree on all sample points grade as equal, and expressions our
// normalizer cannot parse grade as unequal (a false negative, never a
// false positive on malformed input).

const (
	samplePoints    = 5
	sampleTolerance = 1e-6
)

var sampleBase = [samplePoints]float64{1.3, 2.7, -1.1, 0.6, 3.9}

var exprFuncs = map[string]any{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
	"abs":  math.Abs,
	"pi":   math.Pi,
	"e":    math.E,
}

// samplingEqual reports whether two expressions evaluate equal at every
// sample point. The error return means the pair could not be compared at
// all (either side unparseable).
func samplingEqual(candidate, expected string) (bool, error) {
	// Structurally identical expressions are equal without sampling; this
	// also decides pairs whose functions the evaluator does not know.
	if nc, ne := normalizeExpression(candidate), normalizeExpression(expected); nc != "" && nc == ne {
		return true, nil
	}

	candProg, candVars, err := compileExpression(candidate)
	if err != nil {
		// The candidate may be buried in surrounding prose; retry on the
		// last operator-joined run inside it.
		if ms := exprRe.FindAllString(candidate, -1); len(ms) > 0 {
			candProg, candVars, err = compileExpression(ms[len(ms)-1])
		}
		if err != nil {
			return false, fmt.Errorf("grader: candidate: %w", err)
		}
	}

	wantProg, wantVars, err := compileExpression(expected)
	if err != nil {
		return false, fmt.Errorf("grader: expected: %w", err)
	}

	vars := unionVars(candVars, wantVars)

	valid := 0
	for i := 0; i < samplePoints; i++ {
		env := sampleEnv(vars, i)

		got, gotErr := evalNumeric(candProg, env)
		want, wantErr := evalNumeric(wantProg, env)
		if gotErr != nil || wantErr != nil {
			// Singular point (division by zero, log of a negative);
			// skip it rather than fail the comparison.
			continue
		}
		valid++

		if !sampleClose(got, want) {
			return false, nil
		}
	}

	if valid == 0 {
		// Every point was singular; fall back to a normalized string check.
		return normalizeExpression(candidate) == normalizeExpression(expected), nil
	}
	return true, nil
}

func sampleEnv(vars []string, point int) map[string]any {
	env := make(map[string]any, len(exprFuncs)+len(vars))
	for k, v := range exprFuncs {
		env[k] = v
	}
	for i, name := range vars {
		// Offset per variable so x and y never alias.
		env[name] = sampleBase[point] + 0.17*float64(i+1)
	}
	return env
}

func sampleClose(got, want float64) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return false
	}
	if math.Abs(want) < sampleTolerance {
		return math.Abs(got-want) <= sampleTolerance
	}
	return math.Abs(got-want)/math.Abs(want) <= sampleTolerance
}

func compileExpression(s string) (*vm.Program, []string, error) {
	code := normalizeExpression(s)
	if code == "" {
		return nil, nil, errors.New("empty expression")
	}

	prog, err := expr.Compile(code, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, nil, err
	}
	return prog, expressionVars(code), nil
}

func evalNumeric(prog *vm.Program, env map[string]any) (float64, error) {
	out, err := expr.Run(prog, env)
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case float64:
		if math.IsInf(v, 0) {
			return 0, errors.New("grader: non-finite value")
		}
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("grader: non-numeric value %T", out)
	}
}

func expressionMalformed(expected string) bool {
	_, _, err := compileExpression(expected)
	return err != nil
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z_0-9]*`)

func expressionVars(code string) []string {
	seen := make(map[string]struct{})
	for _, name := range identRe.FindAllString(code, -1) {
		if _, isFn := exprFuncs[name]; isFn {
			continue
		}
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func unionVars(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var fracRe = regexp.MustCompile(`\\d?frac\{([^{}]+)\}\{([^{}]+)\}`)

// normalizeExpression rewrites common math notation into expr syntax:
// LaTeX fractions and \cdot, implicit multiplication ("2x", "2(x+1)",
// ")(") made explicit.
func normalizeExpression(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$")
	s = fracRe.ReplaceAllString(s, "(($1)/($2))")
	s = strings.ReplaceAll(s, `\cdot`, "*")
	s = strings.ReplaceAll(s, `\times`, "*")
	s = strings.ReplaceAll(s, `\left`, "")
	s = strings.ReplaceAll(s, `\right`, "")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, " ", "")
	return insertMultiplication(s)
}

func insertMultiplication(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 8)

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if i > 0 {
			prev := runes[i-1]
			switch {
			case isDigitRune(prev) && (isLetterRune(c) || c == '('):
				// "2e3" is scientific notation, not 2*e*3.
				if !isSciExponent(runes, i) {
					sb.WriteByte('*')
				}
			case prev == ')' && (isLetterRune(c) || isDigitRune(c) || c == '('):
				sb.WriteByte('*')
			case isLetterRune(prev) && c == '(' && !endsWithFunc(runes[:i]):
				sb.WriteByte('*')
			case isLetterRune(prev) && isDigitRune(c):
				if !isSciExponent(runes, i-1) {
					// "x2" reads as x*2 in handwritten math.
					sb.WriteByte('*')
				}
			}
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// isSciExponent reports whether runes[i] is the exponent marker of a
// scientific-notation literal: digit, then e/E, then an optionally signed
// digit.
func isSciExponent(runes []rune, i int) bool {
	if i <= 0 || i >= len(runes)-1 {
		return false
	}
	if runes[i] != 'e' && runes[i] != 'E' {
		return false
	}
	if !isDigitRune(runes[i-1]) {
		return false
	}
	next := runes[i+1]
	if next == '+' || next == '-' {
		return i+2 < len(runes) && isDigitRune(runes[i+2])
	}
	return isDigitRune(next)
}

func endsWithFunc(prefix []rune) bool {
	end := len(prefix)
	start := end
	for start > 0 && isLetterRune(prefix[start-1]) {
		start--
	}
	name := string(prefix[start:end])
	if name == "" {
		return false
	}
	_, ok := exprFuncs[name]
	if !ok {
		return false
	}
	// Constants never take arguments.
	return name != "pi" && name != "e"
}

func isDigitRune(r rune) bool  { return r >= '0' && r <= '9' }
func isLetterRune(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

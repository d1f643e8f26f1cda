package grader

import (
	"regexp"
	"strings"
)

// Physics answers carry units; canonicalization reduces a value to its
// base-unit magnitude so "300000 km" and "3e8 m" compare equal. Compound
// units (m/s, m/s^2, km/h) are stripped without rescaling: equality then
// relies on the answer using the same unit the question asked for.

var baseUnits = map[string]struct{}{
	"m": {}, "s": {}, "g": {}, "N": {}, "J": {}, "W": {}, "Hz": {},
	"Pa": {}, "V": {}, "A": {}, "C": {}, "F": {}, "T": {}, "K": {},
	"mol": {}, "rad": {}, "eV": {}, "Ω": {}, "ohm": {},
}

var unitWords = map[string]string{
	"meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"second": "s", "seconds": "s",
	"gram": "g", "grams": "g",
	"kilogram": "kg", "kilograms": "kg",
	"newton": "N", "newtons": "N",
	"joule": "J", "joules": "J",
	"watt": "W", "watts": "W",
	"hertz": "Hz",
	"pascal": "Pa", "pascals": "Pa",
	"volt": "V", "volts": "V",
	"ampere": "A", "amperes": "A", "amp": "A", "amps": "A",
	"coulomb": "C", "coulombs": "C",
	"farad": "F", "farads": "F",
	"tesla": "T", "teslas": "T",
	"kelvin": "K",
	"ohm": "ohm", "ohms": "ohm",
	"radian": "rad", "radians": "rad",
	"electronvolt": "eV", "electronvolts": "eV",
}

var siPrefixes = map[byte]float64{
	'G': 1e9,
	'M': 1e6,
	'k': 1e3,
	'c': 1e-2,
	'm': 1e-3,
	'u': 1e-6,
	'n': 1e-9,
	'p': 1e-12,
}

var compoundUnitRe = regexp.MustCompile(`^[A-Za-zΩµ]+(?:\^?\d+)?(?:/[A-Za-zΩµ]+(?:\^?\d+)?)+$`)

// unitMultiplier resolves a unit token to the factor converting the stated
// value to base-unit magnitude.
func unitMultiplier(token string) (float64, bool) {
	token = strings.TrimSpace(token)
	token = strings.TrimSuffix(token, ".")
	if token == "" {
		return 0, false
	}

	if canon, ok := unitWords[strings.ToLower(token)]; ok {
		token = canon
	}

	if compoundUnitRe.MatchString(token) {
		return 1, true
	}

	if _, ok := baseUnits[token]; ok {
		return 1, true
	}

	if len(token) >= 2 {
		prefix := token[0]
		rest := token[1:]
		if mult, ok := siPrefixes[prefix]; ok {
			if _, isBase := baseUnits[rest]; isBase {
				return mult, true
			}
		}
		if strings.HasPrefix(token, "µ") {
			if _, isBase := baseUnits[strings.TrimPrefix(token, "µ")]; isBase {
				return 1e-6, true
			}
		}
	}

	return 0, false
}

var unitTokenRe = regexp.MustCompile(`^\s*([A-Za-zΩµ]+(?:\^?\d+)?(?:/[A-Za-zΩµ]+(?:\^?\d+)?)*)\.?(?:\s|$|[.,;)])`)

// leadingUnit reads a unit token immediately following a number.
func leadingUnit(rest string) (string, bool) {
	m := unitTokenRe.FindStringSubmatch(rest)
	if m == nil {
		return "", false
	}
	token := m[1]
	if _, ok := unitMultiplier(token); !ok {
		return "", false
	}
	return token, true
}

package runtime

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/rootseek/pkg/domain"
)

var errNotFinite = errors.New("not a finite number")

// ParseGuessList parses a comma separated list of real numbers.
// Any malformed token fails the whole batch.
func ParseGuessList(line string) ([]float64, error) {
	tokens := strings.Split(line, ",")
	values := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := parseFloat(tok)
		if err != nil {
			return nil, &domain.NumericInputError{
				Input:    line,
				Token:    strings.TrimSpace(tok),
				Position: i + 1,
				Err:      err,
			}
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseGuess parses a single real number.
func ParseGuess(line string) (float64, error) {
	v, err := parseFloat(line)
	if err != nil {
		return 0, &domain.NumericInputError{Input: line, Token: strings.TrimSpace(line), Err: err}
	}
	return v, nil
}

func parseFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// FormatFloat prints a float the way the reports expect: shortest round-trip
// form, with a trailing ".0" on integral values.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

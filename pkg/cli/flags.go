package cli

import (
	"math"
	"strconv"
	"strings"
)

// ParseLength converts a length token into seconds. Tokens ending in "m" are
// minutes, tokens ending in "s" or without suffix are seconds. When the token
// can't be parsed prev is returned unchanged.
func ParseLength(token string, prev float64) float64 {
	s := strings.ToLower(strings.TrimSpace(token))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "m"):
		s = strings.TrimSuffix(s, "m")
		mult = 60
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return prev
	}
	return v * mult
}

// Length is a flag.Value holding seconds. Invalid values are ignored.
type Length float64

func (l *Length) String() string {
	if l == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*l), 'f', -1, 64)
}

func (l *Length) Set(s string) error {
	*l = Length(ParseLength(s, float64(*l)))
	return nil
}

// Threads is a flag.Value holding a non-negative thread count. Invalid values
// are ignored.
type Threads int

func (t *Threads) String() string {
	if t == nil {
		return "0"
	}
	return strconv.Itoa(int(*t))
}

func (t *Threads) Set(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return nil
	}
	*t = Threads(n)
	return nil
}

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money — сумма в минимальных единицах (копейки/центы).
// В JSON это десятичное число с не более чем двумя знаками после точки.
type Money int64

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney разбирает "25", "25.5", "-3.05". Экспоненты и больше двух знаков дроби не принимаются.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("money: empty value")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("money: bad amount %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("money: bad amount %q", s)
			}
		}
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: %w", err)
	}
	if units > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("money: amount %q out of range", s)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	v := units*100 + cents
	if neg {
		v = -v
	}
	return Money(v), nil
}

package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// LooseInt разбирает значение, которое в документах встречается то числом, то строкой.
// nil, пустая строка и false считаются отсутствующим значением.
func LooseInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case bool:
		if !t {
			return 0, false
		}
		return 1, true
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case string:
		return looseIntFromString(t)
	case fmt.Stringer:
		return looseIntFromString(t.String())
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func looseIntFromString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatToInt(f)
	}
	// "4 bedrooms", "1,250,000" и т.п.
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

var (
	poundPriceRegex = regexp.MustCompile(`£\s*([\d,]+)`)
	anyPriceRegex   = regexp.MustCompile(`(\d[\d,]{3,})`)
)

// PriceFromDisplay достает первую сумму вида "£1,250,000" из текста,
// а если знака фунта нет - первое число из четырех и более символов.
func PriceFromDisplay(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, re := range []*regexp.Regexp{poundPriceRegex, anyPriceRegex} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil || n == 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

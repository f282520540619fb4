package summary

import (
	"encoding/json"
	"math"
	"strconv"
)

const (
	mibPerGiB = 1024
	mibPerTiB = 1048576

	// UndefinedRatioText renders a ratio whose denominator was zero.
	UndefinedRatioText = "–"
)

// Ratio is a quotient that may be undefined because its denominator was zero.
// Undefined ratios encode as JSON null.
type Ratio struct {
	value   float64
	defined bool
}

func NewRatio(numerator, denominator float64, places int) Ratio {
	if denominator == 0 {
		return Ratio{}
	}
	return Ratio{value: round(numerator/denominator, places), defined: true}
}

func (r Ratio) Value() (float64, bool) {
	return r.value, r.defined
}

func (r Ratio) Defined() bool {
	return r.defined
}

func (r Ratio) String() string {
	if !r.defined {
		return UndefinedRatioText
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ratio{value: v, defined: true}
	return nil
}

// safeDiv returns numerator/denominator rounded to places, or 0 when the denominator is 0.
func safeDiv(numerator, denominator float64, places int) float64 {
	if denominator == 0 {
		return 0
	}
	return round(numerator/denominator, places)
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// MiBToGiB converts and rounds to one decimal.
func MiBToGiB(mib float64) float64 {
	return round(mib/mibPerGiB, 1)
}

// MiBToTiB converts and rounds to two decimals.
func MiBToTiB(mib float64) float64 {
	return round(mib/mibPerTiB, 2)
}

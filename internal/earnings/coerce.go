package earnings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const maxRevenue = 1_000_000

var (
	hundred = decimal.NewFromInt(100)
	thirty  = decimal.NewFromInt(30)
	eight   = decimal.NewFromInt(8)
)

// finite replaces NaN and ±Inf with zero.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toFloat coerces a stored config value to a finite number. Anything that is
// not numeric (or a numeric string) becomes zero.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

// params reads typed values out of the loosely-typed scheme config.
type params map[string]any

func (p params) float(key string) float64 {
	if p == nil {
		return 0
	}
	return toFloat(p[key])
}

func (p params) dec(key string) decimal.Decimal {
	return decimal.NewFromFloat(p.float(key))
}

func (p params) list(key string) []map[string]any {
	raw, ok := p[key].([]any)
	if !ok {
		if typed, ok := p[key].([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

func clampRevenue(f float64) float64 {
	f = finite(f)
	if f < 0 {
		return 0
	}
	if f > maxRevenue {
		return maxRevenue
	}
	return f
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"alertbridge/trader"
)

var errNoJSON = errors.New("no JSON data")

// validationError is a client mistake reported back verbatim with 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// Alert is a validated TradingView alert.
type Alert struct {
	Symbol string
	Side   trader.Side
	Entry  float64
	SL     float64
	TP1    float64
	TP2    float64
}

// ParseAlert validates a raw alert body. Prices may be JSON numbers or
// numeric strings; TradingView templates often quote them.
func ParseAlert(body []byte, defaultSymbol string) (*Alert, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errNoJSON
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, errNoJSON
	}

	alert := &Alert{Symbol: defaultSymbol}
	if raw, ok := fields["symbol"]; ok {
		var symbol string
		if err := json.Unmarshal(raw, &symbol); err != nil {
			return nil, invalid("invalid symbol: must be a string")
		}
		if s := strings.TrimSpace(symbol); s != "" {
			alert.Symbol = s
		}
	}
	alert.Symbol = strings.ToUpper(alert.Symbol)

	var side string
	_ = json.Unmarshal(fields["side"], &side)
	var ok bool
	if alert.Side, ok = trader.ParseSide(side); !ok {
		return nil, invalid("side must be BUY or SELL")
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"entry", &alert.Entry},
		{"sl", &alert.SL},
		{"tp1", &alert.TP1},
		{"tp2", &alert.TP2},
	} {
		v, err := parsePrice(fields[f.name])
		if err != nil {
			return nil, invalid("invalid %s: %v", f.name, err)
		}
		*f.dst = v
	}
	return alert, nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("missing")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("not a number: %s", raw)
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be > 0, got %v", v)
	}
	return v, nil
}

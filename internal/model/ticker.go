package model

import (
	"fmt"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
)

var validate = goValidator.New()

// Ticker is a normalized symbol: 1-5 uppercase ASCII letters.
type Ticker string

func (t Ticker) String() string {
	return string(t)
}

// NormalizeTicker trims and uppercases symbol and checks the result.
func NormalizeTicker(symbol string) (Ticker, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if err := validate.Var(normalized, "required,alpha,min=1,max=5"); err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidTicker, symbol)
	}
	return Ticker(normalized), nil
}

package model

import "errors"

var (
	ErrInvalidTicker   = errors.New("invalid ticker symbol")
	ErrInvalidHolding  = errors.New("invalid holding")
	ErrHoldingNotFound = errors.New("holding not found")
	ErrTickerNotFound  = errors.New("ticker not found")
)

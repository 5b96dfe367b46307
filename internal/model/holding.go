package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotAvailable is rendered in place of a value that depends on an unknown price.
const NotAvailable = "N/A"

// Holding is one portfolio row. Several rows may share a ticker.
type Holding struct {
	ID            uuid.UUID           `json:"id"`
	RemoteID      int64               `json:"remote_id,omitempty"`
	Ticker        Ticker              `json:"ticker"`
	Quantity      int64               `json:"quantity"`
	PurchasePrice decimal.Decimal     `json:"purchase_price"`
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
}

// ProfitLoss is (current - purchase) * quantity, or invalid while the price is unknown.
func (h Holding) ProfitLoss() decimal.NullDecimal {
	if !h.CurrentPrice.Valid {
		return decimal.NullDecimal{}
	}
	pl := h.CurrentPrice.Decimal.Sub(h.PurchasePrice).Mul(decimal.NewFromInt(h.Quantity))
	return decimal.NewNullDecimal(pl)
}

// MarketValue is current * quantity, or invalid while the price is unknown.
func (h Holding) MarketValue() decimal.NullDecimal {
	if !h.CurrentPrice.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(h.CurrentPrice.Decimal.Mul(decimal.NewFromInt(h.Quantity)))
}

// ProfitLossDisplay renders the profit/loss with two decimals or N/A.
func (h Holding) ProfitLossDisplay() string {
	return FormatMoney(h.ProfitLoss())
}

// CurrentPriceDisplay renders the current price with two decimals or N/A.
func (h Holding) CurrentPriceDisplay() string {
	return FormatMoney(h.CurrentPrice)
}

func FormatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return NotAvailable
	}
	return v.Decimal.StringFixed(2)
}

// PortfolioSnapshot is derived on every read from the current holdings.
type PortfolioSnapshot struct {
	Holdings   []Holding       `json:"holdings"`
	TotalValue decimal.Decimal `json:"total_value"`
	// Unpriced counts holdings left out of TotalValue.
	Unpriced int `json:"unpriced"`
}

// NewPortfolioSnapshot sums market value over priced holdings only.
func NewPortfolioSnapshot(holdings []Holding) PortfolioSnapshot {
	snapshot := PortfolioSnapshot{
		Holdings:   make([]Holding, len(holdings)),
		TotalValue: decimal.Zero,
	}
	copy(snapshot.Holdings, holdings)

	for _, h := range holdings {
		value := h.MarketValue()
		if !value.Valid {
			snapshot.Unpriced++
			continue
		}
		snapshot.TotalValue = snapshot.TotalValue.Add(value.Decimal)
	}
	return snapshot
}

// NewHolding is user input for a holding before it is accepted.
type NewHolding struct {
	Ticker        string          `json:"ticker" validate:"required"`
	Quantity      int64           `json:"quantity" validate:"gt=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Validate checks the input and returns the normalized ticker.
func (n NewHolding) Validate() (Ticker, error) {
	ticker, err := NormalizeTicker(n.Ticker)
	if err != nil {
		return "", err
	}
	if err := validate.Struct(n); err != nil {
		return "", fmt.Errorf("%w: quantity must be a positive integer", ErrInvalidHolding)
	}
	if n.PurchasePrice.IsNegative() {
		return "", fmt.Errorf("%w: purchase price must not be negative", ErrInvalidHolding)
	}
	return ticker, nil
}

package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolding_ProfitLoss(t *testing.T) {
	h := Holding{
		ID:            uuid.New(),
		Ticker:        "TSLA",
		Quantity:      10,
		PurchasePrice: decimal.NewFromInt(200),
		CurrentPrice:  decimal.NewNullDecimal(decimal.NewFromInt(220)),
	}

	pl := h.ProfitLoss()
	require.True(t, pl.Valid)
	assert.True(t, decimal.NewFromInt(200).Equal(pl.Decimal))
	assert.Equal(t, "200.00", h.ProfitLossDisplay())
	assert.Equal(t, "220.00", h.CurrentPriceDisplay())
}

func TestHolding_UnknownPrice(t *testing.T) {
	h := Holding{
		Ticker:        "TSLA",
		Quantity:      10,
		PurchasePrice: decimal.NewFromInt(200),
	}

	assert.False(t, h.ProfitLoss().Valid)
	assert.False(t, h.MarketValue().Valid)
	assert.Equal(t, NotAvailable, h.ProfitLossDisplay())
	assert.Equal(t, NotAvailable, h.CurrentPriceDisplay())
}

func TestHolding_ZeroPriceIsNotUnknown(t *testing.T) {
	h := Holding{
		Ticker:        "XYZ",
		Quantity:      3,
		PurchasePrice: decimal.NewFromInt(5),
		CurrentPrice:  decimal.NewNullDecimal(decimal.Zero),
	}
	assert.Equal(t, "-15.00", h.ProfitLossDisplay())
}

func TestNewPortfolioSnapshot(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Quantity: 2, PurchasePrice: decimal.NewFromInt(100), CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("150.25"))},
		{Ticker: "TSLA", Quantity: 10, PurchasePrice: decimal.NewFromInt(200)},
		{Ticker: "AAPL", Quantity: 1, PurchasePrice: decimal.NewFromInt(120), CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("150.25"))},
	}

	snapshot := NewPortfolioSnapshot(holdings)

	assert.Len(t, snapshot.Holdings, 3, "unpriced holdings are still listed")
	assert.Equal(t, 1, snapshot.Unpriced)
	assert.Equal(t, "450.75", snapshot.TotalValue.StringFixed(2))

	snapshot.Holdings[0].Quantity = 99
	assert.Equal(t, int64(2), holdings[0].Quantity, "snapshot must not alias the input")
}

func TestNewHolding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   NewHolding
		want    Ticker
		wantErr error
	}{
		{name: "valid", input: NewHolding{Ticker: "tsla", Quantity: 10, PurchasePrice: decimal.NewFromInt(200)}, want: "TSLA"},
		{name: "free purchase", input: NewHolding{Ticker: "AAPL", Quantity: 1, PurchasePrice: decimal.Zero}, want: "AAPL"},
		{name: "zero quantity", input: NewHolding{Ticker: "AAPL", Quantity: 0, PurchasePrice: decimal.NewFromInt(1)}, wantErr: ErrInvalidHolding},
		{name: "negative quantity", input: NewHolding{Ticker: "AAPL", Quantity: -5, PurchasePrice: decimal.NewFromInt(1)}, wantErr: ErrInvalidHolding},
		{name: "negative price", input: NewHolding{Ticker: "AAPL", Quantity: 1, PurchasePrice: decimal.NewFromInt(-1)}, wantErr: ErrInvalidHolding},
		{name: "bad ticker", input: NewHolding{Ticker: "TOOLONG", Quantity: 1, PurchasePrice: decimal.NewFromInt(1)}, wantErr: ErrInvalidTicker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

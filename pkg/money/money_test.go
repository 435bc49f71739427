package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		rate       string
		commission string
		earning    string
	}{
		{name: "ten percent", amount: "1000.00", rate: "0.10", commission: "100.00", earning: "900.00"},
		{name: "zero rate", amount: "250.00", rate: "0", commission: "0.00", earning: "250.00"},
		{name: "full rate", amount: "250.00", rate: "1", commission: "250.00", earning: "0.00"},
		{name: "rounding remainder stays with vendor", amount: "0.01", rate: "0.3333", commission: "0.00", earning: "0.01"},
		{name: "odd cents", amount: "99.99", rate: "0.125", commission: "12.50", earning: "87.49"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount := dec(t, tc.amount)
			commission, earning, err := Split(amount, dec(t, tc.rate))
			require.NoError(t, err)
			assert.True(t, commission.Equal(dec(t, tc.commission)), "commission %s", commission)
			assert.True(t, earning.Equal(dec(t, tc.earning)), "earning %s", earning)
			assert.True(t, commission.Add(earning).Equal(amount), "split must preserve the amount")
		})
	}
}

func TestSplitRejectsRateOutsideUnitInterval(t *testing.T) {
	for _, rate := range []string{"-0.01", "1.01"} {
		_, _, err := Split(dec(t, "100.00"), dec(t, rate))
		assert.Error(t, err, "rate %s", rate)
	}
}

func TestTaxOn(t *testing.T) {
	got := TaxOn(dec(t, "1050.00"), dec(t, "13"))
	assert.True(t, got.Equal(dec(t, "136.50")), "got %s", got)

	zero := TaxOn(dec(t, "1050.00"), decimal.Zero)
	assert.True(t, zero.IsZero())
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(dec(t, "500.00"), 2)
	assert.True(t, got.Equal(dec(t, "1000.00")), "got %s", got)
}

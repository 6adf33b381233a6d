package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHPYToAPY_RoundTrip(t *testing.T) {
	for _, r := range []float64{0, 1e-7, 0.00001, 0.0000457, 0.0012, 1} {
		assert.InDelta(t, r, APYToHPY(HPYToAPY(r)), 1e-15, "rate %g", r)
	}
}

func TestHPYToAPY_UsesCalendarYear(t *testing.T) {
	assert.InDelta(t, 24.0, HPYToAPD(1), 1e-12)
	assert.InDelta(t, 24*365.2422, HPYToAPY(1), 1e-9)
	assert.InDelta(t, 24*365.2422/12, HPYToAPM(1), 1e-9)
}

func TestApplyRateDiscount(t *testing.T) {
	tests := []struct {
		rate, discount, want float64
	}{
		{0.0001, 0, 0.0001},
		{0.0001, 100, 0},
		{0.0001, 50, 0.00005},
		{0.0002, 10, 0.00018},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ApplyRateDiscount(tt.rate, tt.discount), 1e-15,
			"rate %g discount %g", tt.rate, tt.discount)
	}
}

func TestAPYPercent(t *testing.T) {
	// 0.00001 per hour is roughly 0.876% a year.
	assert.InDelta(t, 0.8766, APYPercent(0.00001), 1e-4)
	assert.InDelta(t, 0.00001, HPYFromAPYPercent(APYPercent(0.00001)), 1e-15)
}

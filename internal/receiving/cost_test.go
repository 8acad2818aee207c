package receiving

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecomputeCost(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name    string
		oldCost decimal.Decimal
		oldQty  int64
		newCost decimal.Decimal
		newQty  int64
		want    string
	}{
		{"weighted", d("10.00"), 10, d("16.00"), 20, "14"},
		{"rounds to cents", d("1.00"), 2, d("2.00"), 1, "1.33"},
		{"no prior stock", d("9.99"), 0, d("4.50"), 5, "4.5"},
		{"negative prior stock ignored", d("9.99"), -3, d("4.50"), 5, "4.5"},
		{"nothing received", d("3.25"), 7, d("8.00"), 0, "3.25"},
		{"same cost", d("5.00"), 3, d("5.00"), 9, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeCost(tt.oldCost, tt.oldQty, tt.newCost, tt.newQty)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

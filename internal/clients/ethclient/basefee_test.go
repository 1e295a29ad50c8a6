package ethclient

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateNextBaseFee(t *testing.T) {
	tests := []struct {
		name          string
		parentGasUsed uint64
		parentBaseFee int64
		expected      int64
	}{
		{"at target", TargetGasUsed, 1000, 1000},
		{"full block raises by 12.5%", 2 * TargetGasUsed, 1000, 1125},
		{"empty block lowers by 12.5%", 0, 1000, 875},
		{"never below 1 wei", 0, 1, 1},
		{"small change truncates", TargetGasUsed + 1, 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := CalculateNextBaseFee(tt.parentGasUsed, big.NewInt(tt.parentBaseFee))
			assert.Equal(t, big.NewInt(tt.expected), next)
		})
	}
}

func TestSummarizePrices(t *testing.T) {
	empty := summarizePrices(1, nil)
	assert.Zero(t, empty.TransactionCount)
	assert.Zero(t, empty.Median.Sign())

	odd := summarizePrices(1, []*big.Int{big.NewInt(9), big.NewInt(1), big.NewInt(5)})
	assert.Equal(t, big.NewInt(5), odd.Median)
	assert.Equal(t, big.NewInt(5), odd.Average)
	assert.Equal(t, big.NewInt(1), odd.Min)
	assert.Equal(t, big.NewInt(9), odd.Max)
}

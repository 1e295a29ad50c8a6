package ethclient

import "math/big"

const (
	// TargetGasUsed is the gas target of a post-London mainnet block
	TargetGasUsed            = 15_000_000
	BaseFeeChangeDenominator = 8
)

// CalculateNextBaseFee estimates the base fee of the block following a parent
// with the given gas usage and base fee. The result never drops below 1 wei.
func CalculateNextBaseFee(parentGasUsed uint64, parentBaseFee *big.Int) *big.Int {
	target := big.NewInt(TargetGasUsed)
	gasUsedDelta := new(big.Int).Sub(new(big.Int).SetUint64(parentGasUsed), target)

	delta := new(big.Int).Mul(parentBaseFee, gasUsedDelta)
	delta.Quo(delta, target)
	delta.Quo(delta, big.NewInt(BaseFeeChangeDenominator))

	next := new(big.Int).Add(parentBaseFee, delta)
	if next.Sign() <= 0 {
		return big.NewInt(1)
	}
	return next
}

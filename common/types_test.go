package common

import "testing"

func TestEVMCoinType(t *testing.T) {
	cases := []struct {
		chainID uint64
		want    uint32
	}{
		{0, CoinTypeETH},
		{1, CoinTypeETH},
		{137, 0x80000089},
		{MaxEVMChainID, 0xffffffff},
		{MaxEVMChainID + 1, EVMCoinTypeFlag},
		{1 << 32, EVMCoinTypeFlag},
		{1<<32 | 137, EVMCoinTypeFlag},
	}
	for _, c := range cases {
		if got := EVMCoinType(c.chainID); got != c.want {
			t.Errorf("EVMCoinType(%d) = %#x, want %#x", c.chainID, got, c.want)
		}
	}
}

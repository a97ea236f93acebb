package resolvers

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	unscommon "github.com/tranvictor/uns/common"
)

func isEVMCoin(coinType uint32) bool {
	return coinType == unscommon.CoinTypeETH || coinType&unscommon.EVMCoinTypeFlag != 0
}

// FormatAddress turns the raw bytes stored for coinType into the address
// string users know for that chain. Empty input is "not set" and yields "".
func FormatAddress(coinType uint32, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	switch {
	case isEVMCoin(coinType):
		if len(raw) != common.AddressLength {
			return "", fmt.Errorf("coin %d: expected %d address bytes, got %d", coinType, common.AddressLength, len(raw))
		}
		addr := common.BytesToAddress(raw)
		if unscommon.IsZeroAddress(addr) {
			return "", nil
		}
		return addr.Hex(), nil
	case coinType == unscommon.CoinTypeBTC:
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(raw, &chaincfg.MainNetParams)
		if err != nil {
			return "", fmt.Errorf("coin %d: %w", coinType, err)
		}
		if len(addrs) != 1 {
			return "", fmt.Errorf("coin %d: unsupported script %x", coinType, raw)
		}
		return addrs[0].EncodeAddress(), nil
	case coinType == unscommon.CoinTypeSOL:
		if len(raw) != 32 {
			return "", fmt.Errorf("coin %d: expected 32 byte public key, got %d", coinType, len(raw))
		}
		return base58.Encode(raw), nil
	default:
		return hexutil.Encode(raw), nil
	}
}

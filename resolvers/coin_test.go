package resolvers

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"

	unscommon "github.com/tranvictor/uns/common"
)

func TestFormatEVMAddress(t *testing.T) {
	addr := common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	got, err := FormatAddress(unscommon.CoinTypeETH, addr.Bytes())
	if err != nil {
		t.Fatalf("FormatAddress failed: %s", err)
	}
	if got != "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045" {
		t.Fatalf("expected checksummed address, got %s", got)
	}
	got, err = FormatAddress(unscommon.EVMCoinType(137), addr.Bytes())
	if err != nil || got != addr.Hex() {
		t.Fatalf("ENSIP-11 coin should format as EVM, got %s (%v)", got, err)
	}
	if _, err := FormatAddress(unscommon.CoinTypeETH, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short EVM address")
	}
}

func TestFormatBitcoinAddress(t *testing.T) {
	const p2pkh = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	addr, err := btcutil.DecodeAddress(p2pkh, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatal(err)
	}
	got, err := FormatAddress(unscommon.CoinTypeBTC, script)
	if err != nil {
		t.Fatalf("FormatAddress failed: %s", err)
	}
	if got != p2pkh {
		t.Fatalf("expected %s, got %s", p2pkh, got)
	}
}

func TestFormatSolanaAddress(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	got, err := FormatAddress(unscommon.CoinTypeSOL, key)
	if err != nil {
		t.Fatalf("FormatAddress failed: %s", err)
	}
	if got != base58.Encode(key) {
		t.Fatalf("unexpected base58 %s", got)
	}
}

func TestFormatEmptyAndUnknown(t *testing.T) {
	got, err := FormatAddress(unscommon.CoinTypeETH, nil)
	if err != nil || got != "" {
		t.Fatalf("empty bytes should be not set, got %q (%v)", got, err)
	}
	got, err = FormatAddress(unscommon.CoinTypeETH, make([]byte, 20))
	if err != nil || got != "" {
		t.Fatalf("zero address should be not set, got %q (%v)", got, err)
	}
	got, err = FormatAddress(2, []byte{0xab, 0xcd})
	if err != nil || got != "0xabcd" {
		t.Fatalf("unknown coin should be hex, got %q (%v)", got, err)
	}
}

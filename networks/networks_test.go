package networks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupByNameAndAlias(t *testing.T) {
	n, err := GetNetwork("polygon")
	if err != nil {
		t.Fatalf("GetNetwork(polygon) failed: %s", err)
	}
	if n.GetChainID() != 137 {
		t.Fatalf("expected chain id 137, got %d", n.GetChainID())
	}
	if n.MultiCallContract() != Multicall3Address.Hex() {
		t.Fatalf("expected multicall3 address, got %s", n.MultiCallContract())
	}
}

func TestUnknownNetwork(t *testing.T) {
	if _, err := GetNetwork("no-such-chain"); !errors.Is(err, ErrNetworkNotFound) {
		t.Fatalf("expected ErrNetworkNotFound, got %v", err)
	}
	if _, err := GetNetworkByID(999999999); !errors.Is(err, ErrNetworkNotFound) {
		t.Fatalf("expected ErrNetworkNotFound, got %v", err)
	}
}

func TestCustomNetworksOverride(t *testing.T) {
	dir := t.TempDir()
	good := `{"name":"devnet","chain_id":31337,"native_token_symbol":"ETH","node_variable_name":"DEVNET_NODE","default_nodes":{"local":"http://127.0.0.1:8545"}}`
	bad := `{"name":""}`
	if err := os.WriteFile(filepath.Join(dir, "devnet.json"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	ns := newSupportedNetworks(dir)
	n, err := ns.getNetworkByID(31337)
	if err != nil {
		t.Fatalf("custom network not loaded: %s", err)
	}
	if n.GetDefaultNodes()["local"] != "http://127.0.0.1:8545" {
		t.Fatalf("unexpected nodes: %v", n.GetDefaultNodes())
	}
	if _, err := ns.getNetwork("mainnet"); err != nil {
		t.Fatalf("built-in networks should still be present: %s", err)
	}
}

func TestSetNetworkFallsBackToMainnet(t *testing.T) {
	SetNetwork("no-such-chain")
	if CurrentNetwork().GetChainID() != 1 {
		t.Fatalf("expected mainnet fallback, got %s", CurrentNetwork().GetName())
	}
	SetNetwork("bsc")
	if CurrentNetwork().GetChainID() != 56 {
		t.Fatalf("expected bsc, got %s", CurrentNetwork().GetName())
	}
}

package namehash_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/uns/namehash"
)

func TestNameHashKnownVectors(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"", "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
		{"vitalik.eth", "0xee6c4522aab0003e8d14cd40a6af439055fd2577951148c14b6cea9a53475835"},
	}
	for _, tc := range cases {
		got := namehash.NameHash(tc.name)
		if got != common.HexToHash(tc.want) {
			t.Errorf("NameHash(%q) = %s, want %s", tc.name, got.Hex(), tc.want)
		}
	}
}

func TestNameHashIsCaseInsensitive(t *testing.T) {
	upper := namehash.NameHash("VITALIK.ETH")
	lower := namehash.NameHash("vitalik.eth")
	if upper != lower {
		t.Fatalf("expected equal hashes, got %s and %s", upper.Hex(), lower.Hex())
	}
	if again := namehash.NameHash("vitalik.eth"); again != lower {
		t.Fatalf("namehash is not deterministic: %s vs %s", again.Hex(), lower.Hex())
	}
}

func TestNameHashSiblingsUnderDifferentParentsDiffer(t *testing.T) {
	a := namehash.NameHash("pay.alice.eth")
	b := namehash.NameHash("pay.bob.eth")
	if a == b {
		t.Fatalf("identical leaf labels under different parents collided: %s", a.Hex())
	}
}

func TestLabelHash(t *testing.T) {
	got := namehash.LabelHash("eth")
	want := common.HexToHash("0x4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0")
	if got != want {
		t.Fatalf("LabelHash(eth) = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestReverseName(t *testing.T) {
	got := namehash.ReverseName("0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	want := "d8da6bf26964af9d7eed9e03e53415d37aa96045.addr.reverse"
	if got != want {
		t.Fatalf("ReverseName = %q, want %q", got, want)
	}
	if namehash.ReverseNode("d8da6bf26964af9d7eed9e03e53415d37aa96045") != namehash.NameHash(want) {
		t.Fatalf("ReverseNode must not depend on the 0x prefix or case")
	}
}

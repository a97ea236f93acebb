package namehash

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const ReverseSuffix = "addr.reverse"

// LabelHash is keccak256 of a single utf-8 label.
func LabelHash(label string) common.Hash {
	return crypto.Keccak256Hash([]byte(label))
}

// NameHash computes the recursive EIP-137 node of name. Labels are processed
// from the rightmost one, each hashed together with the node of its parent:
//
//	node = keccak256(node || keccak256(label))
//
// The input is folded first so names that normalize identically always hash
// identically. The empty name hashes to 32 zero bytes.
func NameHash(name string) common.Hash {
	node := common.Hash{}
	labels := Labels(name)
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := LabelHash(labels[i])
		node = crypto.Keccak256Hash(node[:], labelHash[:])
	}
	return node
}

// ReverseName returns "<hex address without 0x>.addr.reverse".
func ReverseName(address string) string {
	addr := strings.ToLower(strings.TrimSpace(address))
	addr = strings.TrimPrefix(addr, "0x")
	return addr + "." + ReverseSuffix
}

// ReverseNode is the namehash of ReverseName(address).
func ReverseNode(address string) common.Hash {
	return NameHash(ReverseName(address))
}

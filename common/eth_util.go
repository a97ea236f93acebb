package common

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const ZeroAddress = "0x0000000000000000000000000000000000000000"

var (
	hexAddressRegexp = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)
	hexStringRegexp  = regexp.MustCompile(`^(0x)?[0-9a-fA-F]+$`)
)

func mustABI(def string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return &result
}

var (
	multicall3        = mustABI(multicall3abi)
	ensRegistry       = mustABI(ensregistryabi)
	ensResolver       = mustABI(ensresolverabi)
	multiCoinResolver = mustABI(multicoinresolverabi)
	baseRegistrar     = mustABI(baseregistrarabi)
	unsProxyReader    = mustABI(unsproxyreaderabi)
)

func GetMultiCallABI() *abi.ABI {
	return multicall3
}

func GetENSRegistryABI() *abi.ABI {
	return ensRegistry
}

func GetENSResolverABI() *abi.ABI {
	return ensResolver
}

func GetMultiCoinResolverABI() *abi.ABI {
	return multiCoinResolver
}

func GetBaseRegistrarABI() *abi.ABI {
	return baseRegistrar
}

func GetUNSProxyReaderABI() *abi.ABI {
	return unsProxyReader
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

func HexToAddresses(hexes []string) []common.Address {
	result := []common.Address{}
	for _, h := range hexes {
		result = append(result, common.HexToAddress(h))
	}
	return result
}

func HexToHash(hex string) common.Hash {
	return common.HexToHash(hex)
}

// IsHexAddress accepts 20 byte hex addresses with or without the 0x prefix.
func IsHexAddress(s string) bool {
	return hexAddressRegexp.MatchString(strings.TrimSpace(s))
}

// IsHexString accepts any non empty hex string with or without 0x.
func IsHexString(s string) bool {
	return hexStringRegexp.MatchString(strings.TrimSpace(s))
}

func IsZeroAddress(addr common.Address) bool {
	return addr == common.Address{}
}

// AddressKey canonicalizes an address for comparisons and cache keys: hex
// strings become lowercase with a 0x prefix, anything else (base58 keys of
// non EVM chains) is only trimmed since it is case sensitive.
func AddressKey(address string) string {
	address = strings.TrimSpace(address)
	if IsHexString(address) {
		return "0x" + strings.TrimPrefix(strings.ToLower(address), "0x")
	}
	return address
}

package networks

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Multicall3 is deployed at the same address on every chain we read from.
var Multicall3Address = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

type GenericNetworkConfig struct {
	Name                     string            `json:"name"`
	AlternativeNames         []string          `json:"alternative_names"`
	ChainID                  uint64            `json:"chain_id"`
	NativeTokenSymbol        string            `json:"native_token_symbol"`
	BlockTime                uint64            `json:"block_time"`
	NodeVariableName         string            `json:"node_variable_name"`
	DefaultNodes             map[string]string `json:"default_nodes"`
	MultiCallContractAddress common.Address    `json:"multi_call_contract_address"`
}

// GenericNetwork is an EVM chain described entirely by its config.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	if config.MultiCallContractAddress == (common.Address{}) {
		config.MultiCallContractAddress = Multicall3Address
	}
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) MultiCallContract() string {
	return gn.config.MultiCallContractAddress.Hex()
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}

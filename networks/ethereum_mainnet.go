package networks

var EthereumMainnet Network = NewEthereumMainnet()

type ethereumMainnet struct {
	*GenericNetwork
}

func NewEthereumMainnet() *ethereumMainnet {
	return &ethereumMainnet{
		GenericNetwork: NewGenericNetwork(GenericNetworkConfig{
			Name:              "mainnet",
			AlternativeNames:  []string{"ethereum"},
			ChainID:           1,
			NativeTokenSymbol: "ETH",
			BlockTime:         12,
			NodeVariableName:  "ETHEREUM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"mainnet-llamarpc":   "https://eth.llamarpc.com",
				"mainnet-publicnode": "https://ethereum-rpc.publicnode.com",
			},
		}),
	}
}

package networks

var ArbitrumMainnet Network = NewArbitrumMainnet()

type arbitrumMainnet struct {
	*GenericNetwork
}

func NewArbitrumMainnet() *arbitrumMainnet {
	return &arbitrumMainnet{
		GenericNetwork: NewGenericNetwork(GenericNetworkConfig{
			Name:              "arbitrum",
			ChainID:           42161,
			NativeTokenSymbol: "ETH",
			BlockTime:         1,
			NodeVariableName:  "ARBITRUM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"arbitrum": "https://arb1.arbitrum.io/rpc",
			},
		}),
	}
}

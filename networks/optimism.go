package networks

var OptimismMainnet Network = NewOptimismMainnet()

type optimismMainnet struct {
	*GenericNetwork
}

func NewOptimismMainnet() *optimismMainnet {
	return &optimismMainnet{
		GenericNetwork: NewGenericNetwork(GenericNetworkConfig{
			Name:              "optimism",
			AlternativeNames:  []string{"op"},
			ChainID:           10,
			NativeTokenSymbol: "ETH",
			BlockTime:         2,
			NodeVariableName:  "OPTIMISM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"optimism": "https://mainnet.optimism.io",
			},
		}),
	}
}

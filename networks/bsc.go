package networks

var BSCMainnet Network = NewBSCMainnet()

type bscMainnet struct {
	*GenericNetwork
}

func NewBSCMainnet() *bscMainnet {
	return &bscMainnet{
		GenericNetwork: NewGenericNetwork(GenericNetworkConfig{
			Name:              "bsc",
			AlternativeNames:  []string{"bnb"},
			ChainID:           56,
			NativeTokenSymbol: "BNB",
			BlockTime:         3,
			NodeVariableName:  "BSC_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"binance": "https://bsc-dataseed.binance.org",
				"defibit": "https://bsc-dataseed1.defibit.io",
			},
		}),
	}
}

package networks

var Matic Network = NewMatic()

type matic struct {
	*GenericNetwork
}

func NewMatic() *matic {
	return &matic{
		GenericNetwork: NewGenericNetwork(GenericNetworkConfig{
			Name:              "matic",
			AlternativeNames:  []string{"polygon"},
			ChainID:           137,
			NativeTokenSymbol: "POL",
			BlockTime:         2,
			NodeVariableName:  "MATIC_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"polygon-rpc": "https://polygon-rpc.com",
			},
		}),
	}
}

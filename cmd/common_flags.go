package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
)

func AddLookupFlags(c *cobra.Command) {
	c.PersistentFlags().
		BoolVarP(&config.NoCache, "nocache", "n", false, "Skip the cache and ask the resolvers directly.")
	c.PersistentFlags().
		Uint64VarP(&config.ChainID, "chain-id", "i", 0, "Chain to resolve the address for. 0 means the resolver's home chain.")
	c.PersistentFlags().
		Int64VarP(&config.CoinType, "coin-type", "t", -1, "SLIP-0044 coin type of the wanted address, e.g. 0 for BTC, 501 for SOL. Overrides --chain-id.")
	c.PersistentFlags().
		BoolVarP(&config.JSONOutput, "json", "j", false, "Print results as JSON.")
}

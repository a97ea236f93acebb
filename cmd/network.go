package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/util/reader"
)

var (
	NetworkFile  string
	NetworkForce bool
)

func readNetwork(input string) (networks.Network, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("pass the network json, or a path to it, with --file")
	}
	if strings.HasPrefix(input, "{") && strings.HasSuffix(input, "}") {
		n, err := networks.NewNetworkFromJSON([]byte(input))
		if err != nil {
			return nil, fmt.Errorf("the provided json is not valid: %w", err)
		}
		return n, nil
	}
	content, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the network file: %w", err)
	}
	n, err := networks.NewNetworkFromJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid network config: %w", input, err)
	}
	return n, nil
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a network that registries can be read from",
	Long: `--file takes a path to a network json or the json itself:
	{
		"name": "network_name",
		"alternative_names": ["alternative_name_1"],
		"chain_id": 1,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 12,
		"node_variable_name": "UNS_NODE_1",
		"default_nodes": {
			"node_name_1": "node_url_1"
		},
		"multi_call_contract_address": "0xcA11bde05977b3631167028862bE2a173976CA11"
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := readNetwork(NetworkFile)
		if err != nil {
			return err
		}
		u := newUI()
		for _, name := range append([]string{n.GetName()}, n.GetAlternativeNames()...) {
			if _, err := networks.GetNetwork(name); err == nil {
				if !NetworkForce {
					return fmt.Errorf("network %s already exists, use --force to replace it", name)
				}
				u.Warn("Network %s already exists, replacing it", name)
			}
		}
		if err := networks.AddNetwork(n); err != nil {
			return fmt.Errorf("failed to add the network: %w", err)
		}
		u.Success("Network %s with chain ID %d saved to %s/networks/", n.GetName(), n.GetChainID(), config.Dir())
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every network uns knows",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()
		rows := [][]string{}
		for _, n := range networks.GetSupportedNetworks() {
			nodes := reader.NodesOf(n)
			keys := make([]string, 0, len(nodes))
			for k := range nodes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i, k := range keys {
				name, chain := "", ""
				if i == 0 {
					name, chain = n.GetName(), fmt.Sprint(n.GetChainID())
				}
				rows = append(rows, []string{name, chain, k + ": " + nodes[k]})
			}
		}
		if config.JSONOutput {
			return u.JSON(networks.GetSupportedNetworks())
		}
		u.Table([]string{"Network", "Chain ID", "Nodes"}, rows)
		u.Info("Add networks with: uns network add --file network.json")
		u.Info("Delete one by removing its json from %s/networks/", config.Dir())
		return nil
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage the networks uns reads registries from",
}

func init() {
	addNetworkCmd.Flags().StringVarP(&NetworkFile, "file", "f", "", "Path to the network json, or the json itself")
	addNetworkCmd.Flags().BoolVar(&NetworkForce, "force", false, "Replace networks with the same name")
	listNetworkCmd.Flags().BoolVarP(&config.JSONOutput, "json", "j", false, "Print networks as JSON.")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}

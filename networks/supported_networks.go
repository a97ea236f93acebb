package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/log"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	BSCMainnet,
	Matic,
	ArbitrumMainnet,
	BaseMainnet,
	OptimismMainnet,
}

var globalSupportedNetworks = newSupportedNetworks(customNetworksDir())
var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) add(network Network) {
	n.networks[network.GetName()] = network
	n.networksByID[network.GetChainID()] = network
	for _, an := range network.GetAlternativeNames() {
		n.networks[an] = network
	}
}

func newSupportedNetworks(dir string) *networks {
	result := networks{
		map[string]Network{},
		map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if _, found := result.networks[n.GetName()]; found {
			panic(
				fmt.Errorf(
					"network with name or alternative name of '%s' already exists",
					n.GetName(),
				),
			)
		}
		for _, an := range n.GetAlternativeNames() {
			if _, found := result.networks[an]; found {
				panic(
					fmt.Errorf("network with name or alternative name of '%s' already exists", an),
				)
			}
		}
		result.add(n)
	}

	if dir == "" {
		return &result
	}
	customNetworks, err := loadCustomNetworks(dir)
	if err != nil {
		log.Warn("Failed to load custom networks, continuing with built-in networks", "dir", dir, "err", err)
		return &result
	}

	for _, n := range customNetworks {
		if _, found := result.networks[n.GetName()]; found {
			log.Info("Custom network overrides built-in one", "name", n.GetName())
		}
		if _, found := result.networksByID[n.GetChainID()]; found {
			log.Info("Custom network overrides built-in chain id", "chainid", n.GetChainID())
		}
		result.add(n)
	}
	return &result
}

func customNetworksDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".uns", "networks")
}

// loadCustomNetworks reads every *.json file in dir. Files that fail to
// parse are skipped.
func loadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			log.Warn("Skipping unparsable custom network", "file", file, "err", err)
			continue
		}

		networks = append(networks, network)
	}

	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs both name and chain_id")
	}

	return NewGenericNetwork(networkConfig), nil
}

func GetSupportedNetworks() []Network {
	seen := map[uint64]bool{}
	res := []Network{}
	for _, n := range globalSupportedNetworks.networksByID {
		if seen[n.GetChainID()] {
			continue
		}
		seen[n.GetChainID()] = true
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetChainID() < res[j].GetChainID() })
	return res
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// AddNetwork saves n to ~/.uns/networks/<name>.json and makes it available
// right away.
func AddNetwork(n Network) error {
	dir := customNetworksDir()
	if dir == "" {
		return fmt.Errorf("couldn't locate the home directory")
	}
	content, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding network %s: %w", n.GetName(), err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, n.GetName()+".json"), content, 0o644); err != nil {
		return err
	}
	globalSupportedNetworks.add(n)
	return nil
}

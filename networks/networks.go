package networks

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// NetworkString is bound to the --network flag.
var NetworkString string

func CurrentNetwork() Network {
	mu.Lock()
	n := cachedNetwork
	mu.Unlock()
	if n != nil {
		return n
	}

	SetNetwork(NetworkString)

	mu.Lock()
	defer mu.Unlock()
	return cachedNetwork
}

// SetNetwork falls back to mainnet when networkStr is unknown.
func SetNetwork(networkStr string) {
	mu.Lock()
	defer mu.Unlock()

	n, err := GetNetwork(networkStr)
	if err != nil {
		if networkStr != "" {
			log.Warn("Unknown network, using mainnet", "network", networkStr)
		}
		n = EthereumMainnet
	}
	if cachedNetwork != nil && cachedNetwork.GetName() != n.GetName() {
		log.Info("Switched network", "network", n.GetName())
	}
	cachedNetwork = n
}

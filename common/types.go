package common

// Coin types follow SLIP-0044. EVM chains other than Ethereum use the
// ENSIP-11 encoding 0x80000000 | chainId.
const (
	CoinTypeBTC uint32 = 0
	CoinTypeETH uint32 = 60
	CoinTypeSOL uint32 = 501
	CoinTypeSUI uint32 = 784

	EVMCoinTypeFlag uint32 = 0x80000000

	// MaxEVMChainID is the largest chain id that fits beside the flag bit.
	MaxEVMChainID uint64 = 0x7fffffff
)

// EVMCoinType returns the ENSIP-11 coin type for an EVM chain id. Chain 1
// keeps the historical coin type 60. Chain ids above MaxEVMChainID have no
// coin type and give the bare flag, the chain agnostic EVM coin.
func EVMCoinType(chainID uint64) uint32 {
	if chainID == 0 || chainID == 1 {
		return CoinTypeETH
	}
	if chainID > MaxEVMChainID {
		return EVMCoinTypeFlag
	}
	return EVMCoinTypeFlag | uint32(chainID)
}

// ResolutionResult is what a resolver produces on a successful forward
// resolution.
type ResolutionResult struct {
	Address      string         `json:"address"`
	ResolverUsed string         `json:"resolverUsed"`
	Name         string         `json:"name"`
	ChainID      uint64         `json:"chainId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no maps with r.
func (r ResolutionResult) Clone() ResolutionResult {
	if r.Metadata != nil {
		md := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			md[k] = v
		}
		r.Metadata = md
	}
	return r
}

// NameRecords aggregates every record known for a name. Addresses are keyed
// by coin type.
type NameRecords struct {
	Addresses map[uint32]string `json:"addresses"`
	Texts     map[string]string `json:"texts"`
	Avatar    string            `json:"avatar,omitempty"`
	Owner     string            `json:"owner,omitempty"`
	Resolver  string            `json:"resolver,omitempty"`
}

func NewNameRecords() *NameRecords {
	return &NameRecords{
		Addresses: map[uint32]string{},
		Texts:     map[string]string{},
	}
}

func (r NameRecords) Clone() NameRecords {
	addrs := make(map[uint32]string, len(r.Addresses))
	for k, v := range r.Addresses {
		addrs[k] = v
	}
	texts := make(map[string]string, len(r.Texts))
	for k, v := range r.Texts {
		texts[k] = v
	}
	r.Addresses = addrs
	r.Texts = texts
	return r
}

// IsEmpty reports whether no record at all was found.
func (r NameRecords) IsEmpty() bool {
	return len(r.Addresses) == 0 && len(r.Texts) == 0 &&
		r.Avatar == "" && r.Owner == ""
}

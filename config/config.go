package config

// Bound to the cli flags of the uns command.
var (
	Network    string
	ConfigFile string
	Verbose    bool
	JSONOutput bool

	NoCache  bool
	ChainID  uint64
	CoinType int64 = -1

	Limit int
)

// CoinTypeFlag returns the --coin-type flag, nil when it was not given.
func CoinTypeFlag() *uint32 {
	if CoinType < 0 {
		return nil
	}
	ct := uint32(CoinType)
	return &ct
}

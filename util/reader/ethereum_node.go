package reader

import (
	"context"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	// CallContract performs an eth_call against the latest block. A revert
	// is reported as empty return data, not as an error.
	CallContract(ctx context.Context, caddr string, data []byte) ([]byte, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}

// ContractCaller is the single capability resolvers need from the chain.
// *EthReader and *OneNodeReader implement it, tests use in-memory fakes.
type ContractCaller interface {
	CallContract(ctx context.Context, caddr string, data []byte) ([]byte, error)
}

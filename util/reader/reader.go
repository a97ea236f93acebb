package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/tranvictor/uns/networks"
)

var (
	ErrNoNodes = errors.New("no nodes configured")
	// ErrEmptyResult is returned by ReadContract when the call reverted or
	// the contract returned nothing.
	ErrEmptyResult = errors.New("empty contract result")
)

// EthReader reads from every configured node of one network at once and
// returns the first successful answer.
type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return &EthReader{
		nodes: ns,
	}
}

func NewEthReaderWithNodes(nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{nodes: ns}
}

// NewEthReader uses the node set in the network's env var when present,
// otherwise the network's default nodes.
func NewEthReader(network networks.Network) *EthReader {
	return NewEthReaderGeneric(NodesOf(network))
}

func NodesOf(network networks.Network) map[string]string {
	custom := strings.TrimSpace(os.Getenv(network.GetNodeVariableName()))
	if custom != "" {
		return map[string]string{"custom-node": custom}
	}
	return network.GetDefaultNodes()
}

func (er *EthReader) NodeNames() []string {
	result := []string{}
	for name := range er.nodes {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type readContractToBytesResponse struct {
	Data  []byte
	Error error
}

func (er *EthReader) CallContract(ctx context.Context, caddr string, data []byte) ([]byte, error) {
	if len(er.nodes) == 0 {
		return nil, ErrNoNodes
	}
	resCh := make(chan readContractToBytesResponse, len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			data, err := n.CallContract(ctx, caddr, data)
			resCh <- readContractToBytesResponse{
				Data:  data,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Data, result.Error
		}
		errs = append(errs, result.Error)
	}
	return nil, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

type getBlockResponse struct {
	Block uint64
	Error error
}

func (er *EthReader) CurrentBlock(ctx context.Context) (uint64, error) {
	if len(er.nodes) == 0 {
		return 0, ErrNoNodes
	}
	resCh := make(chan getBlockResponse, len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			block, err := n.CurrentBlock(ctx)
			resCh <- getBlockResponse{
				Block: block,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Block, result.Error
		}
		errs = append(errs, result.Error)
	}
	return 0, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

// ReadContract packs method(args...), calls caddr and unpacks the answer
// into result. Empty return data yields ErrEmptyResult.
func ReadContract(
	ctx context.Context,
	caller ContractCaller,
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	data, err := abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("packing %s failed: %w", method, err)
	}
	responseBytes, err := caller.CallContract(ctx, caddr, data)
	if err != nil {
		return err
	}
	if len(responseBytes) == 0 {
		return ErrEmptyResult
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

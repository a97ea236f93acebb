// Package readertest provides an in-memory chain that answers eth_call
// requests from Go handlers, including Multicall3 aggregate3 batches.
package readertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/networks"
)

// Handler receives the decoded arguments of one call and returns the
// values to encode as its outputs. A non nil error is a revert.
type Handler func(args []interface{}) ([]interface{}, error)

var ErrRevert = fmt.Errorf("execution reverted")

type entry struct {
	method abi.Method
	h      Handler
}

// contract maps 4 byte selectors to handlers, so one address can serve
// methods from several ABIs.
type contract map[string]entry

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type call3Result struct {
	Success    bool
	ReturnData []byte
}

type Chain struct {
	mu        sync.Mutex
	contracts map[common.Address]contract
	multicall common.Address
	calls     int
	methods   map[string]int
	err       error
}

func NewChain() *Chain {
	return &Chain{
		contracts: map[common.Address]contract{},
		multicall: networks.Multicall3Address,
		methods:   map[string]int{},
	}
}

// Handle registers h for method on the contract at addr.
func (c *Chain) Handle(addr string, a *abi.ABI, method string, h Handler) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	address := common.HexToAddress(addr)
	ct, found := c.contracts[address]
	if !found {
		ct = contract{}
		c.contracts[address] = ct
	}
	m, ok := a.Methods[method]
	if !ok {
		panic(fmt.Sprintf("method %s not in abi", method))
	}
	ct[string(m.ID)] = entry{method: m, h: h}
	return c
}

// Fail makes every following top level call return err. nil restores.
func (c *Chain) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls is the number of top level CallContract invocations so far.
func (c *Chain) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// MethodCalls counts dispatches of method, including those inside batches.
func (c *Chain) MethodCalls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.methods[method]
}

func (c *Chain) CallContract(ctx context.Context, caddr string, data []byte) ([]byte, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := common.HexToAddress(caddr)
	if target == c.multicall {
		return c.aggregate3(data)
	}
	ret, err := c.dispatch(target, data)
	if err != nil {
		return []byte{}, nil
	}
	return ret, nil
}

func (c *Chain) aggregate3(data []byte) ([]byte, error) {
	mcABI := unscommon.GetMultiCallABI()
	method, err := mcABI.MethodById(data)
	if err != nil || method.Name != "aggregate3" {
		return []byte{}, nil
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)
	results := make([]call3Result, 0, len(calls))
	for _, cl := range calls {
		ret, err := c.dispatch(cl.Target, cl.CallData)
		if err != nil && !cl.AllowFailure {
			return []byte{}, nil
		}
		results = append(results, call3Result{Success: err == nil, ReturnData: ret})
	}
	return method.Outputs.Pack(results)
}

func (c *Chain) dispatch(target common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	ct, found := c.contracts[target]
	c.mu.Unlock()
	if !found || len(data) < 4 {
		// calling an address without code succeeds with no data
		return []byte{}, nil
	}
	c.mu.Lock()
	e, ok := ct[string(data[:4])]
	if ok {
		c.methods[e.method.Name]++
	}
	c.mu.Unlock()
	if !ok {
		return nil, ErrRevert
	}
	args, err := e.method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, ErrRevert
	}
	out, err := e.h(args)
	if err != nil {
		return nil, err
	}
	return e.method.Outputs.Pack(out...)
}

// Return builds a Handler that always answers vals.
func Return(vals ...interface{}) Handler {
	return func([]interface{}) ([]interface{}, error) { return vals, nil }
}

// Revert is a Handler that always reverts.
func Revert([]interface{}) ([]interface{}, error) {
	return nil, ErrRevert
}

package reader

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	unscommon "github.com/tranvictor/uns/common"
)

var DO_NOTHING_MC_ONE_RESULT_HANDLER MCOneResultHandler = func(ok bool, result interface{}) error { return nil }

// MCOneResultHandler is called once per registered call after the batch
// returns. ok is false when that call reverted, returned nothing or could
// not be unpacked into result.
type MCOneResultHandler func(ok bool, result interface{}) error

// MultipleCall batches view calls into a single Multicall3 aggregate3 call
// with allowFailure set on every entry, so one failing call never fails
// the others.
type MultipleCall struct {
	caller   ContractCaller
	contract string
	mcABI    *abi.ABI
	results  []interface{}
	caddrs   []string
	abis     []*abi.ABI
	methods  []string
	argLists [][]interface{}
	hooks    []MCOneResultHandler
	oks      []bool
}

func NewMultiCall(caller ContractCaller, mcContract string) *MultipleCall {
	return &MultipleCall{
		caller:   caller,
		contract: mcContract,
		mcABI:    unscommon.GetMultiCallABI(),
	}
}

func (mc *MultipleCall) RegisterWithHook(
	result interface{},
	hook MCOneResultHandler,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	mc.results = append(mc.results, result)
	mc.caddrs = append(mc.caddrs, caddr)
	mc.abis = append(mc.abis, abi)
	mc.methods = append(mc.methods, method)
	mc.argLists = append(mc.argLists, args)
	mc.hooks = append(mc.hooks, hook)
	return mc
}

func (mc *MultipleCall) Register(
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	return mc.RegisterWithHook(
		result,
		DO_NOTHING_MC_ONE_RESULT_HANDLER,
		caddr,
		abi,
		method,
		args...,
	)
}

func (mc *MultipleCall) Len() int {
	return len(mc.results)
}

// OK reports whether call i succeeded. Valid after Do.
func (mc *MultipleCall) OK(i int) bool {
	return i < len(mc.oks) && mc.oks[i]
}

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type call3Result struct {
	Success    bool
	ReturnData []byte
}

func (mc *MultipleCall) callMCContract(ctx context.Context) ([]call3Result, error) {
	calls := make([]call3, 0, len(mc.caddrs))
	for i, caddr := range mc.caddrs {
		data, err := mc.abis[i].Pack(mc.methods[i], mc.argLists[i]...)
		if err != nil {
			return nil, fmt.Errorf("packing call index %d (%s) failed: %w", i, mc.methods[i], err)
		}
		calls = append(calls, call3{
			Target:       unscommon.HexToAddress(caddr),
			AllowFailure: true,
			CallData:     data,
		})
	}

	data, err := mc.mcABI.Pack("aggregate3", calls)
	if err != nil {
		return nil, fmt.Errorf("packing aggregate3 failed: %w", err)
	}
	responseBytes, err := mc.caller.CallContract(ctx, mc.contract, data)
	if err != nil {
		return nil, fmt.Errorf("reading mc.aggregate3 failed: %w", err)
	}
	if len(responseBytes) == 0 {
		return nil, fmt.Errorf("reading mc.aggregate3 failed: %w", ErrEmptyResult)
	}
	out, err := mc.mcABI.Unpack("aggregate3", responseBytes)
	if err != nil {
		return nil, fmt.Errorf("unpacking aggregate3 failed: %w", err)
	}
	res := *abi.ConvertType(out[0], new([]call3Result)).(*[]call3Result)
	if len(res) != len(calls) {
		return nil, fmt.Errorf("aggregate3 returned %d results for %d calls", len(res), len(calls))
	}
	return res, nil
}

// Do sends the batch. An error means the batch as a whole failed and no
// hook was run.
func (mc *MultipleCall) Do(ctx context.Context) error {
	if len(mc.results) == 0 {
		return nil
	}
	res, err := mc.callMCContract(ctx)
	if err != nil {
		return fmt.Errorf("calling mc contract failed: %w", err)
	}

	mc.oks = make([]bool, len(res))
	for i, r := range res {
		if r.Success && len(r.ReturnData) > 0 {
			err = mc.abis[i].UnpackIntoInterface(mc.results[i], mc.methods[i], r.ReturnData)
			mc.oks[i] = err == nil
		}
	}

	for i, result := range mc.results {
		if err := mc.hooks[i](mc.oks[i], result); err != nil {
			return fmt.Errorf("calling hook at index %d failed: %w", i, err)
		}
	}
	return nil
}

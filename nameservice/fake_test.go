package nameservice

import (
	"context"
	"errors"
	"sync"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/resolvers"
)

// callLog records the order resolvers were asked in.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, id)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.calls...)
}

type fakeResolver struct {
	id      string
	tlds    []string
	log     *callLog
	answers map[string]string
	names   map[string]string
	texts   map[string]map[string]string
	err     error
	panics  bool

	mu    sync.Mutex
	count int
}

func newFake(id string, log *callLog, tlds ...string) *fakeResolver {
	return &fakeResolver{
		id:      id,
		tlds:    tlds,
		log:     log,
		answers: map[string]string{},
		names:   map[string]string{},
		texts:   map[string]map[string]string{},
	}
}

func (f *fakeResolver) ID() string                  { return f.id }
func (f *fakeResolver) SupportedTLDs() []string     { return f.tlds }
func (f *fakeResolver) SupportedChainIDs() []uint64 { return nil }
func (f *fakeResolver) SupportsReverse() bool       { return len(f.names) > 0 }

func (f *fakeResolver) CanResolve(name string) bool {
	return len(f.tlds) == 0 || namehash.TLD(name) == f.tlds[0]
}

func (f *fakeResolver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *fakeResolver) touch() error {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add(f.id)
	}
	if f.panics {
		panic("resolver blew up")
	}
	return f.err
}

func (f *fakeResolver) Resolve(ctx context.Context, name string, opts resolvers.ResolveOptions) (*unscommon.ResolutionResult, error) {
	if err := f.touch(); err != nil {
		return nil, err
	}
	addr, found := f.answers[name]
	if !found {
		return nil, nil
	}
	return &unscommon.ResolutionResult{Address: addr, Name: name}, nil
}

func (f *fakeResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	if err := f.touch(); err != nil {
		return "", err
	}
	return f.names[address], nil
}

func (f *fakeResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	if err := f.touch(); err != nil {
		return nil, err
	}
	texts, found := f.texts[name]
	if !found {
		return nil, nil
	}
	records := unscommon.NewNameRecords()
	for k, v := range texts {
		records.Texts[k] = v
	}
	return records, nil
}

// fakeBatch fails every call with err.
type fakeBatch struct {
	err   error
	calls int
}

func (b *fakeBatch) ResolverID() string        { return resolvers.ENSID }
func (b *fakeBatch) ChainID() uint64           { return 1 }
func (b *fakeBatch) CanBatch(name string) bool { return namehash.TLD(name) == "eth" }

func (b *fakeBatch) ResolveMany(ctx context.Context, names []string) (map[string]string, error) {
	b.calls++
	return nil, b.err
}

var errNodeDown = errors.New("node down")

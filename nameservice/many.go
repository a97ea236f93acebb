package nameservice

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	unscommon "github.com/tranvictor/uns/common"
)

func (s *Service) batchResolver() BatchResolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// ResolveMany resolves every name and returns results keyed by the input
// strings, nil for names nobody knows. Every name is validated before any
// lookup; one invalid name fails the whole call.
//
// Cache hits are served first. Among the misses, names the batch resolver
// covers go through it in one batched lookup; the rest are resolved one by
// one through the normal dispatch. When the batched lookup fails as a
// whole, its names join the one by one path.
func (s *Service) ResolveMany(ctx context.Context, names []string, opts Options) (map[string]*unscommon.ResolutionResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	normalized := make([]string, len(names))
	for i, name := range names {
		n, err := s.normalize(name)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
	}

	var mu sync.Mutex
	result := make(map[string]*unscommon.ResolutionResult, len(names))
	set := func(input string, res *unscommon.ResolutionResult) {
		mu.Lock()
		defer mu.Unlock()
		result[input] = res
	}

	// normalized name -> input spellings that map to it
	pending := map[string][]string{}
	order := []string{}
	for i, n := range normalized {
		if !opts.NoCache {
			if cached, found := s.cache.GetForward(forwardKey(n, opts)); found {
				res := cached
				set(names[i], &res)
				continue
			}
		}
		if _, seen := pending[n]; !seen {
			order = append(order, n)
		}
		pending[n] = append(pending[n], names[i])
	}

	batchable := []string{}
	serial := []string{}
	b := s.batchResolver()
	for _, n := range order {
		if b != nil && opts.CoinType == nil && (opts.ChainID == 0 || opts.ChainID == b.ChainID()) && b.CanBatch(n) {
			batchable = append(batchable, n)
		} else {
			serial = append(serial, n)
		}
	}

	if len(batchable) > 0 {
		addrs, err := b.ResolveMany(ctx, batchable)
		if err != nil {
			s.l.Warn("Batch resolution failed, falling back to one by one", "names", len(batchable), "err", err)
			serial = append(serial, batchable...)
		} else {
			for _, n := range batchable {
				var res *unscommon.ResolutionResult
				if addr := addrs[n]; addr != "" {
					res = &unscommon.ResolutionResult{
						Address:      addr,
						ResolverUsed: b.ResolverID(),
						Name:         n,
						ChainID:      b.ChainID(),
					}
					s.cache.SetForward(forwardKey(n, opts), *res)
				}
				for _, input := range pending[n] {
					set(input, copyResult(res))
				}
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, n := range serial {
		n := n
		g.Go(func() error {
			res, _ := s.resolveNormalized(gctx, n, Options{ChainID: opts.ChainID, CoinType: opts.CoinType, NoCache: true})
			for _, input := range pending[n] {
				set(input, copyResult(res))
			}
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}

func copyResult(res *unscommon.ResolutionResult) *unscommon.ResolutionResult {
	if res == nil {
		return nil
	}
	out := res.Clone()
	return &out
}

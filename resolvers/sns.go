package resolvers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
)

const (
	SNSID = "sns"

	SNSTLD             = "sol"
	DefaultSNSProxyURL = "https://sns-sdk-proxy.bonfida.workers.dev"
)

// SNS record names for the text keys we expose
var snsTextKeys = map[string]string{
	"avatar":       "pic",
	"url":          "url",
	"email":        "email",
	"com.twitter":  "twitter",
	"com.discord":  "discord",
	"com.github":   "github",
	"org.telegram": "telegram",
}

type snsResponse[T any] struct {
	S      string `json:"s"`
	Result T      `json:"result"`
}

func (r snsResponse[T]) ok() bool {
	return r.S == "ok"
}

type snsFavorite struct {
	Domain  string `json:"domain"`
	Reverse string `json:"reverse"`
}

type snsRecord struct {
	Deserialized string `json:"deserialized"`
}

// SNSResolver resolves Solana Name Service .sol names through the SNS SDK
// proxy. Addresses are base58 Solana keys.
type SNSResolver struct {
	api *jsonAPI
}

func NewSNSResolver(baseURL string, client *http.Client, rps float64) *SNSResolver {
	if baseURL == "" {
		baseURL = DefaultSNSProxyURL
	}
	return &SNSResolver{api: newJSONAPI(strings.TrimRight(baseURL, "/"), client, rps)}
}

func (r *SNSResolver) ID() string                  { return SNSID }
func (r *SNSResolver) SupportedTLDs() []string     { return []string{SNSTLD} }
func (r *SNSResolver) SupportedChainIDs() []uint64 { return nil }
func (r *SNSResolver) SupportsReverse() bool       { return true }

func (r *SNSResolver) CanResolve(name string) bool {
	return hasTLD(name, []string{SNSTLD})
}

func domainOf(name string) string {
	return strings.TrimSuffix(namehash.Fold(name), "."+SNSTLD)
}

func (r *SNSResolver) owner(ctx context.Context, name string) (string, error) {
	resp := snsResponse[string]{}
	found, err := r.api.get(ctx, "/resolve/"+url.PathEscape(domainOf(name)), &resp)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", name, err)
	}
	if !found || !resp.ok() {
		return "", nil
	}
	return resp.Result, nil
}

// Resolve only answers for the Solana coin type. With no explicit coin type
// the owner key is returned since that is the only address SNS holds.
func (r *SNSResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	if opts.CoinType != nil && *opts.CoinType != unscommon.CoinTypeSOL {
		return nil, nil
	}
	owner, err := r.owner(ctx, name)
	if err != nil || owner == "" {
		return nil, err
	}
	return &unscommon.ResolutionResult{
		Address:      owner,
		ResolverUsed: SNSID,
		Name:         namehash.Fold(name),
		Metadata: map[string]any{
			"coinType": unscommon.CoinTypeSOL,
		},
	}, nil
}

// ReverseResolve returns the owner's favorite domain.
func (r *SNSResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" || unscommon.IsHexString(address) {
		return "", nil
	}
	resp := snsResponse[snsFavorite]{}
	found, err := r.api.get(ctx, "/favorite-domain/"+url.PathEscape(address), &resp)
	if err != nil {
		return "", fmt.Errorf("reading favorite domain of %s: %w", address, err)
	}
	if !found || !resp.ok() || resp.Result.Reverse == "" {
		return "", nil
	}
	return resp.Result.Reverse + "." + SNSTLD, nil
}

func (r *SNSResolver) record(ctx context.Context, name, record string) (string, error) {
	resp := snsResponse[snsRecord]{}
	found, err := r.api.get(ctx, "/record-v2/"+url.PathEscape(domainOf(name))+"/"+url.PathEscape(record), &resp)
	if err != nil {
		return "", fmt.Errorf("reading %s record of %s: %w", record, name, err)
	}
	if !found || !resp.ok() {
		return "", nil
	}
	return resp.Result.Deserialized, nil
}

func (r *SNSResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	owner, err := r.owner(ctx, name)
	if err != nil || owner == "" {
		return nil, err
	}
	records := unscommon.NewNameRecords()
	records.Owner = owner
	records.Addresses[unscommon.CoinTypeSOL] = owner
	for _, key := range DefaultTextKeys {
		snsKey, ok := snsTextKeys[key]
		if !ok {
			continue
		}
		value, err := r.record(ctx, name, snsKey)
		if err != nil {
			return nil, err
		}
		if value != "" {
			records.Texts[key] = value
		}
	}
	records.Avatar = records.Texts["avatar"]
	return records, nil
}

func (r *SNSResolver) Text(ctx context.Context, name, key string) (string, error) {
	snsKey, ok := snsTextKeys[key]
	if !ok {
		snsKey = key
	}
	return r.record(ctx, name, snsKey)
}

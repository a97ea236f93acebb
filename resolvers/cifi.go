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
	CiFiID = "cifi"

	CiFiTLD           = "cifi"
	DefaultCiFiAPIURL = "https://api.cifi.com"
)

type Profile struct {
	ID             string            `json:"id"`
	Username       string            `json:"username"`
	DisplayName    string            `json:"displayName"`
	Bio            string            `json:"bio"`
	Avatar         string            `json:"avatar"`
	PrimaryAddress string            `json:"primaryAddress"`
	Texts          map[string]string `json:"texts"`
}

type LinkedAddress struct {
	ChainID uint64 `json:"chainId"`
	Address string `json:"address"`
	Primary bool   `json:"primary"`
}

// IdentityClient is the identity service collaborator. Lookups that find
// nothing return a nil profile and a nil error.
type IdentityClient interface {
	GetProfile(ctx context.Context, usernameOrID string) (*Profile, error)
	GetLinkedAddresses(ctx context.Context, userID string) ([]LinkedAddress, error)
	GetProfileByAddress(ctx context.Context, address string) (*Profile, error)
}

type HTTPIdentityClient struct {
	api *jsonAPI
}

func NewHTTPIdentityClient(baseURL string, client *http.Client, rps float64) *HTTPIdentityClient {
	return &HTTPIdentityClient{api: newJSONAPI(strings.TrimRight(baseURL, "/"), client, rps)}
}

func (c *HTTPIdentityClient) GetProfile(ctx context.Context, usernameOrID string) (*Profile, error) {
	profile := &Profile{}
	found, err := c.api.get(ctx, "/v1/profiles/"+url.PathEscape(usernameOrID), profile)
	if err != nil || !found {
		return nil, err
	}
	return profile, nil
}

func (c *HTTPIdentityClient) GetLinkedAddresses(ctx context.Context, userID string) ([]LinkedAddress, error) {
	result := []LinkedAddress{}
	_, err := c.api.get(ctx, "/v1/profiles/"+url.PathEscape(userID)+"/addresses", &result)
	return result, err
}

func (c *HTTPIdentityClient) GetProfileByAddress(ctx context.Context, address string) (*Profile, error) {
	profile := &Profile{}
	found, err := c.api.get(ctx, "/v1/profiles/by-address/"+url.PathEscape(unscommon.AddressKey(address)), profile)
	if err != nil || !found {
		return nil, err
	}
	return profile, nil
}

// CiFiResolver resolves "@username" and "username.cifi" through the
// identity service.
type CiFiResolver struct {
	client IdentityClient
}

func NewCiFiResolver(client IdentityClient) *CiFiResolver {
	return &CiFiResolver{client: client}
}

func (r *CiFiResolver) ID() string                  { return CiFiID }
func (r *CiFiResolver) SupportedTLDs() []string     { return []string{CiFiTLD} }
func (r *CiFiResolver) SupportedChainIDs() []uint64 { return nil }
func (r *CiFiResolver) SupportsReverse() bool       { return true }

func (r *CiFiResolver) CanResolve(name string) bool {
	name = namehash.Fold(name)
	return strings.HasPrefix(name, namehash.IdentityPrefix) || hasTLD(name, []string{CiFiTLD})
}

// Username strips the identity prefix or suffix from name.
func Username(name string) string {
	name = namehash.Fold(name)
	name = strings.TrimPrefix(name, namehash.IdentityPrefix)
	return strings.TrimSuffix(name, "."+CiFiTLD)
}

func (r *CiFiResolver) profile(ctx context.Context, name string) (*Profile, error) {
	username := Username(name)
	if username == "" {
		return nil, nil
	}
	profile, err := r.client.GetProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("reading profile of %s: %w", username, err)
	}
	return profile, nil
}

// Resolve picks the address linked for opts.ChainID and falls back to the
// profile's primary address when that chain has none.
func (r *CiFiResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	profile, err := r.profile(ctx, name)
	if err != nil || profile == nil {
		return nil, err
	}
	linked, err := r.client.GetLinkedAddresses(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("reading linked addresses of %s: %w", profile.Username, err)
	}

	chainID := opts.ChainID
	if chainID == 0 {
		chainID = 1
	}
	addr := ""
	primary := profile.PrimaryAddress
	for _, l := range linked {
		if l.ChainID == chainID && addr == "" {
			addr = l.Address
		}
		if l.Primary && primary == "" {
			primary = l.Address
		}
	}
	usedPrimary := false
	if addr == "" {
		addr = primary
		usedPrimary = true
	}
	if isEmptyAddress(addr) {
		return nil, nil
	}
	return &unscommon.ResolutionResult{
		Address:      addr,
		ResolverUsed: CiFiID,
		Name:         namehash.Fold(name),
		ChainID:      chainID,
		Metadata: map[string]any{
			"userId":          profile.ID,
			"username":        profile.Username,
			"primaryFallback": usedPrimary,
		},
	}, nil
}

func (r *CiFiResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	profile, err := r.client.GetProfileByAddress(ctx, address)
	if err != nil {
		return "", fmt.Errorf("reading profile of %s: %w", address, err)
	}
	if profile == nil || profile.Username == "" {
		return "", nil
	}
	return namehash.IdentityPrefix + profile.Username, nil
}

func (r *CiFiResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	profile, err := r.profile(ctx, name)
	if err != nil || profile == nil {
		return nil, err
	}
	linked, err := r.client.GetLinkedAddresses(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("reading linked addresses of %s: %w", profile.Username, err)
	}
	records := unscommon.NewNameRecords()
	for _, l := range linked {
		if isEmptyAddress(l.Address) {
			continue
		}
		records.Addresses[unscommon.EVMCoinType(l.ChainID)] = l.Address
	}
	if _, ok := records.Addresses[unscommon.CoinTypeETH]; !ok && !isEmptyAddress(profile.PrimaryAddress) {
		records.Addresses[unscommon.CoinTypeETH] = profile.PrimaryAddress
	}
	for k, v := range profile.Texts {
		records.Texts[k] = v
	}
	if profile.DisplayName != "" {
		records.Texts["display"] = profile.DisplayName
	}
	if profile.Bio != "" {
		records.Texts["description"] = profile.Bio
	}
	if profile.Avatar != "" {
		records.Texts["avatar"] = profile.Avatar
	}
	records.Avatar = records.Texts["avatar"]
	return records, nil
}

func (r *CiFiResolver) Text(ctx context.Context, name, key string) (string, error) {
	records, err := r.GetRecords(ctx, name)
	if err != nil || records == nil {
		return "", err
	}
	return records.Texts[key], nil
}

package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/expiration"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/util/cache"
)

var coinNames = map[uint32]string{
	unscommon.CoinTypeBTC: "BTC",
	unscommon.CoinTypeETH: "ETH",
	unscommon.CoinTypeSOL: "SOL",
	unscommon.CoinTypeSUI: "SUI",
}

func CoinName(coinType uint32) string {
	if name, found := coinNames[coinType]; found {
		return name
	}
	if coinType&unscommon.EVMCoinTypeFlag != 0 {
		return fmt.Sprintf("EVM chain %d", coinType&^unscommon.EVMCoinTypeFlag)
	}
	return fmt.Sprintf("coin %d", coinType)
}

// WarnConfusable prints a warning when name mixes look-alike scripts.
func WarnConfusable(u UI, name string) {
	if scripts := namehash.Scripts(name); len(scripts) > 1 {
		u.Warn("Warning: %s mixes %s characters, it may impersonate another name", name, strings.Join(scripts, " and "))
	}
}

func ShowResolution(u UI, name string, res *unscommon.ResolutionResult) {
	if res == nil {
		u.Error("%s: not found", name)
		return
	}
	rows := [][2]string{
		{"Name", res.Name},
		{"Address", u.Style(Found(res.Address))},
		{"Resolver", res.ResolverUsed},
	}
	if res.ChainID != 0 {
		rows = append(rows, [2]string{"Chain", fmt.Sprint(res.ChainID)})
	}
	keys := make([]string, 0, len(res.Metadata))
	for k := range res.Metadata {
		if k != "warnings" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(res.Metadata[k])})
	}
	u.KeyValue(rows)
	if warnings, ok := res.Metadata["warnings"].([]string); ok {
		for _, w := range warnings {
			u.Warn("Warning: %s", w)
		}
	}
}

// ShowResolutions prints one row per name in the given order.
func ShowResolutions(u UI, names []string, results map[string]*unscommon.ResolutionResult) {
	rows := make([][]string, 0, len(names))
	found := 0
	for _, name := range names {
		res := results[name]
		if res == nil {
			rows = append(rows, []string{name, u.Style(Missing("not found")), ""})
			continue
		}
		found++
		rows = append(rows, []string{name, u.Style(Found(res.Address)), res.ResolverUsed})
	}
	u.Table([]string{"Name", "Address", "Resolver"}, rows)
	u.Info("%d of %d names resolved", found, len(names))
}

func ShowRecords(u UI, name string, records *unscommon.NameRecords) {
	if records == nil {
		u.Error("%s: no records", name)
		return
	}
	u.Section(name)
	meta := [][2]string{}
	if records.Owner != "" {
		meta = append(meta, [2]string{"Owner", records.Owner})
	}
	if records.Resolver != "" {
		meta = append(meta, [2]string{"Resolver", records.Resolver})
	}
	if records.Avatar != "" {
		meta = append(meta, [2]string{"Avatar", records.Avatar})
	}
	if len(meta) > 0 {
		u.KeyValue(meta)
	}

	coins := make([]uint32, 0, len(records.Addresses))
	for ct := range records.Addresses {
		coins = append(coins, ct)
	}
	sort.Slice(coins, func(i, j int) bool { return coins[i] < coins[j] })
	if len(coins) > 0 {
		rows := [][]string{}
		for _, ct := range coins {
			rows = append(rows, []string{CoinName(ct), fmt.Sprint(ct), records.Addresses[ct]})
		}
		u.Table([]string{"Coin", "Type", "Address"}, rows)
	}

	keys := make([]string, 0, len(records.Texts))
	for k := range records.Texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		rows := [][]string{}
		for _, k := range keys {
			rows = append(rows, []string{k, records.Texts[k]})
		}
		u.Table([]string{"Key", "Value"}, rows)
	}
}

func ShowCacheStats(u UI, stats cache.Stats) {
	u.KeyValue([][2]string{
		{"Hits", fmt.Sprint(stats.Hits)},
		{"Misses", fmt.Sprint(stats.Misses)},
		{"Hit rate", fmt.Sprintf("%.1f%%", stats.HitRate()*100)},
		{"Evictions", fmt.Sprint(stats.Evictions)},
		{"Expirations", fmt.Sprint(stats.Expirations)},
		{"Entries", fmt.Sprintf("%d forward, %d reverse, %d records", stats.ForwardSize, stats.ReverseSize, stats.RecordsSize)},
	})
}

// HumanDuration prints whole days past one day, hours below.
func HumanDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	var s string
	switch {
	case d >= 24*time.Hour:
		s = fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case d >= time.Hour:
		s = fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		s = fmt.Sprintf("%dm", int(d/time.Minute))
	}
	if neg {
		return s + " ago"
	}
	return s
}

func ShowEvent(u UI, e expiration.Event) {
	switch e.Kind {
	case expiration.EventExpired:
		u.Error("%s expired %s (%s)", e.Name, HumanDuration(e.Remaining), e.ExpiresAt.Format(time.RFC3339))
	default:
		u.Warn("%s expires in %s (%s), crossed the %s threshold",
			e.Name, HumanDuration(e.Remaining), e.ExpiresAt.Format(time.RFC3339), HumanDuration(e.Threshold))
	}
}

func ShowExpirations(u UI, records []expiration.Record, now time.Time) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if !r.Known() {
			rows = append(rows, []string{r.Name, u.Style(Suspect("unknown")), ""})
			continue
		}
		remaining := r.ExpiresAt.Sub(now)
		left := Found(HumanDuration(remaining))
		if remaining <= 0 {
			left = Missing(HumanDuration(remaining))
		}
		rows = append(rows, []string{r.Name, r.ExpiresAt.Format(time.RFC3339), u.Style(left)})
	}
	u.Table([]string{"Name", "Expires", "Remaining"}, rows)
}

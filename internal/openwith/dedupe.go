package openwith

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Strategy selects how duplicate entries are detected.
type Strategy string

const (
	// StrategyName groups by application name only. Catches the common
	// case of a flatpak and a native install with different Exec lines.
	StrategyName Strategy = "name"
	// StrategyNameCmd groups by name plus first Exec command.
	StrategyNameCmd Strategy = "name+cmd"
	// StrategyAuto applies both strategies.
	StrategyAuto Strategy = "auto"
)

// ValidStrategy reports whether s names a known strategy.
func ValidStrategy(s string) bool {
	switch Strategy(s) {
	case StrategyName, StrategyNameCmd, StrategyAuto:
		return true
	}
	return false
}

// ValidProvider reports whether p names a provider that can be preferred.
func ValidProvider(p string) bool {
	switch Provider(p) {
	case ProviderNative, ProviderFlatpak, ProviderSnap:
		return true
	}
	return false
}

// providerRankTables orders providers by preference. Lower rank is kept.
var providerRankTables = map[Provider]map[Provider]int{
	ProviderNative:  {ProviderNative: 0, ProviderFlatpak: 1, ProviderSnap: 2, ProviderOther: 3},
	ProviderFlatpak: {ProviderFlatpak: 0, ProviderNative: 1, ProviderSnap: 2, ProviderOther: 3},
	ProviderSnap:    {ProviderSnap: 0, ProviderNative: 1, ProviderFlatpak: 2, ProviderOther: 3},
}

// ProviderRank returns the keep-priority of provider under the given
// preference (lower wins).
func ProviderRank(provider, prefer Provider) int {
	table, ok := providerRankTables[prefer]
	if !ok {
		table = providerRankTables[ProviderNative]
	}
	rank, ok := table[provider]
	if !ok {
		return 3
	}
	return rank
}

// Group is a set of entries that present the same application.
type Group []*Entry

// GroupsByName returns groups of 2+ named entries sharing a lowercase name,
// ordered by name for deterministic output.
func GroupsByName(entries []*Entry) []Group {
	byName := lo.GroupBy(entries, func(e *Entry) string {
		return strings.ToLower(strings.TrimSpace(e.Name))
	})

	var groups []Group
	for name, group := range byName {
		if name == "" || len(group) < 2 {
			continue
		}
		groups = append(groups, group)
	}

	sortGroups(groups)
	return groups
}

// GroupsByNameCommand returns groups of 2+ named entries sharing both name
// and first Exec command.
func GroupsByNameCommand(entries []*Entry) []Group {
	byKey := lo.GroupBy(entries, func(e *Entry) string {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		cmd := strings.ToLower(strings.TrimSpace(e.FirstCommand))
		return name + "\x00" + cmd
	})

	var groups []Group
	for key, group := range byKey {
		if strings.HasPrefix(key, "\x00") || len(group) < 2 {
			continue
		}
		groups = append(groups, group)
	}

	sortGroups(groups)
	return groups
}

func sortGroups(groups []Group) {
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Path < g[j].Path })
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0].Name < groups[j][0].Name ||
			(groups[i][0].Name == groups[j][0].Name && groups[i][0].Path < groups[j][0].Path)
	})
}

// ChooseKeep picks the entry to keep from a name group: best provider rank
// under the preference, then system scope over user, then path order.
func ChooseKeep(group Group, prefer Provider) *Entry {
	return lo.MinBy(group, func(a, b *Entry) bool {
		ra, rb := ProviderRank(a.Provider, prefer), ProviderRank(b.Provider, prefer)
		if ra != rb {
			return ra < rb
		}
		sa, sb := scopeRank(a.Scope), scopeRank(b.Scope)
		if sa != sb {
			return sa < sb
		}
		return a.Path < b.Path
	})
}

// ChooseKeepByCommand picks the entry to keep from a name+cmd group: the
// first system-scope entry, else the first entry.
func ChooseKeepByCommand(group Group) *Entry {
	for _, e := range group {
		if e.Scope == ScopeSystem {
			return e
		}
	}
	return group[0]
}

func scopeRank(s Scope) int {
	if s == ScopeSystem {
		return 0
	}
	return 1
}

// Providers lists the distinct providers present in a group, sorted.
func (g Group) Providers() []string {
	providers := lo.Uniq(lo.Map(g, func(e *Entry, _ int) string {
		return string(e.Provider)
	}))
	sort.Strings(providers)
	return providers
}

package forks

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/eth2030/evmkit/core/vm"
)

// resolvedUpgrade is the flattened view of one upgrade: every proposal it
// includes and every mnemonic those proposals introduce. The sets are built
// once at init and only read afterwards.
type resolvedUpgrade struct {
	eips      mapset.Set[EIP]
	mnemonics mapset.Set[vm.Mnemonic]
}

var resolved = resolveHistory()

func resolveHistory() (out [numUpgrades]resolvedUpgrade) {
	// Parents are declared before their children, so one pass suffices.
	for _, u := range Upgrades() {
		r := resolvedUpgrade{
			eips:      mapset.NewThreadUnsafeSet[EIP](),
			mnemonics: mapset.NewThreadUnsafeSet[vm.Mnemonic](),
		}
		if p, ok := u.Parent(); ok {
			r.eips = out[p].eips.Clone()
			r.mnemonics = out[p].mnemonics.Clone()
		}
		for _, e := range history[u].eips {
			r.eips.Add(e)
			r.mnemonics.Append(eipTable[e].introduces...)
		}
		out[u] = r
	}
	return out
}

// AllEIPs returns every proposal included by u, in numeric order.
func (u Upgrade) AllEIPs() []EIP {
	if !u.Valid() {
		return nil
	}
	out := resolved[u].eips.ToSlice()
	slices.Sort(out)
	return out
}

// Mnemonics returns every mnemonic available under u, in byte order.
func (u Upgrade) Mnemonics() []vm.Mnemonic {
	if !u.Valid() {
		return nil
	}
	out := resolved[u].mnemonics.ToSlice()
	slices.Sort(out)
	return out
}

// NewMnemonics returns the mnemonics available under u but not under its
// parent, in byte order.
func (u Upgrade) NewMnemonics() []vm.Mnemonic {
	if !u.Valid() {
		return nil
	}
	own := resolved[u].mnemonics
	if p, ok := u.Parent(); ok {
		own = own.Difference(resolved[p].mnemonics)
	}
	out := own.ToSlice()
	slices.Sort(out)
	return out
}

// IntroducedIn returns the earliest upgrade in history order that supports
// m, together with the proposal that introduced it.
func IntroducedIn(m vm.Mnemonic) (Upgrade, EIP, bool) {
	for _, u := range Upgrades() {
		if !u.SupportsMnemonic(m) {
			continue
		}
		for _, e := range u.AllEIPs() {
			if slices.Contains(eipTable[e].introduces, m) {
				return u, e, true
			}
		}
	}
	return 0, 0, false
}

// IncludedBy returns the upgrades that include e, in history order.
func IncludedBy(e EIP) []Upgrade {
	var out []Upgrade
	for _, u := range Upgrades() {
		if resolved[u].eips.Contains(e) {
			out = append(out, u)
		}
	}
	return out
}

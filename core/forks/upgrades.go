// Package forks resolves which EIPs and instructions each Ethereum protocol
// upgrade makes available. Every upgrade records only the proposals it adds
// on top of its parent; everything else is inherited by walking parent
// links.
package forks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eth2030/evmkit/core/vm"
)

// Upgrade is a node in the mainnet upgrade history.
type Upgrade uint8

// Upgrades in history order. Constantinople and Petersburg both branch from
// Byzantium; Istanbul continues from Petersburg.
const (
	Genesis Upgrade = iota
	Frontier
	FrontierThawing
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	MuirGlacier
	Berlin
	London
	ArrowGlacier
	GrayGlacier
	Paris
	Shanghai
	Cancun
	Prague

	numUpgrades = iota
)

// ErrUnknownUpgrade is returned when an upgrade name cannot be resolved.
var ErrUnknownUpgrade = errors.New("unknown upgrade")

const noParent = Upgrade(0xff)

type upgradeInfo struct {
	name   string
	parent Upgrade
	eips   []EIP
}

var history = [numUpgrades]upgradeInfo{
	Genesis:          {"Genesis", noParent, []EIP{EIPBase}},
	Frontier:         {"Frontier", Genesis, nil},
	FrontierThawing:  {"FrontierThawing", Frontier, nil},
	Homestead:        {"Homestead", FrontierThawing, []EIP{EIP2, EIP7, EIP8}},
	TangerineWhistle: {"TangerineWhistle", Homestead, []EIP{EIP150}},
	SpuriousDragon:   {"SpuriousDragon", TangerineWhistle, []EIP{EIP155, EIP160, EIP161, EIP170}},
	Byzantium:        {"Byzantium", SpuriousDragon, []EIP{EIP100, EIP140, EIP196, EIP197, EIP198, EIP211, EIP214, EIP649, EIP658}},
	Constantinople:   {"Constantinople", Byzantium, []EIP{EIP145, EIP1014, EIP1052, EIP1234, EIP1283}},
	Petersburg:       {"Petersburg", Byzantium, []EIP{EIP145, EIP1014, EIP1052, EIP1234}},
	Istanbul:         {"Istanbul", Petersburg, []EIP{EIP152, EIP1108, EIP1344, EIP1884, EIP2028, EIP2200}},
	MuirGlacier:      {"MuirGlacier", Istanbul, []EIP{EIP2384}},
	Berlin:           {"Berlin", MuirGlacier, []EIP{EIP2565, EIP2718, EIP2929, EIP2930}},
	London:           {"London", Berlin, []EIP{EIP1559, EIP3198, EIP3529, EIP3541, EIP3554}},
	ArrowGlacier:     {"ArrowGlacier", London, []EIP{EIP4345}},
	GrayGlacier:      {"GrayGlacier", ArrowGlacier, []EIP{EIP5133}},
	Paris:            {"Paris", GrayGlacier, []EIP{EIP3675, EIP4399}},
	Shanghai:         {"Shanghai", Paris, []EIP{EIP3651, EIP3855, EIP3860, EIP4895, EIP6049}},
	Cancun:           {"Cancun", Shanghai, []EIP{EIP1153, EIP4788, EIP4844, EIP5656, EIP6780, EIP7044, EIP7045, EIP7514, EIP7516}},
	Prague:           {"Prague", Cancun, []EIP{EIP2537, EIP2935, EIP6110, EIP7002, EIP7251, EIP7549, EIP7623, EIP7685, EIP7691, EIP7702, EIP7840}},
}

// Alternative names accepted by UpgradeByName.
var upgradeAliases = map[string]Upgrade{
	"THAWING":           FrontierThawing,
	"TANGERINE":         TangerineWhistle,
	"EIP150":            TangerineWhistle,
	"SPURIOUS":          SpuriousDragon,
	"EIP158":            SpuriousDragon,
	"CONSTANTINOPLEFIX": Petersburg,
	"MERGE":             Paris,
	"THEMERGE":          Paris,
	"SHAPELLA":          Shanghai,
	"DENCUN":            Cancun,
	"PECTRA":            Prague,
}

// Upgrades returns every upgrade in history order.
func Upgrades() []Upgrade {
	out := make([]Upgrade, numUpgrades)
	for i := range out {
		out[i] = Upgrade(i)
	}
	return out
}

// UpgradeByName resolves a case-insensitive upgrade name or common alias.
func UpgradeByName(name string) (Upgrade, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	for u, info := range history {
		if strings.ToUpper(info.name) == key {
			return Upgrade(u), nil
		}
	}
	key = strings.ReplaceAll(key, "_", "")
	if u, ok := upgradeAliases[key]; ok {
		return u, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUpgrade, name)
}

// Valid reports whether u is a known upgrade.
func (u Upgrade) Valid() bool { return u < numUpgrades }

func (u Upgrade) String() string {
	if !u.Valid() {
		return fmt.Sprintf("Upgrade(%d)", uint8(u))
	}
	return history[u].name
}

// MarshalText implements encoding.TextMarshaler.
func (u Upgrade) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUpgrade, uint8(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Upgrade) UnmarshalText(text []byte) error {
	v, err := UpgradeByName(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Parent returns the upgrade u builds on. Genesis has no parent.
func (u Upgrade) Parent() (Upgrade, bool) {
	if !u.Valid() || history[u].parent == noParent {
		return 0, false
	}
	return history[u].parent, true
}

// Ancestors returns u's ancestors, nearest first.
func (u Upgrade) Ancestors() []Upgrade {
	var out []Upgrade
	for p, ok := u.Parent(); ok; p, ok = p.Parent() {
		out = append(out, p)
	}
	return out
}

// IsDescendantOf reports whether a is u itself or one of its ancestors.
func (u Upgrade) IsDescendantOf(a Upgrade) bool {
	if !u.Valid() {
		return false
	}
	for cur, ok := u, true; ok; cur, ok = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// EIPs returns the proposals u introduces on top of its parent.
func (u Upgrade) EIPs() []EIP {
	if !u.Valid() {
		return nil
	}
	return append([]EIP(nil), history[u].eips...)
}

// IncludesEIP reports whether e is introduced by u or any of its ancestors.
func (u Upgrade) IncludesEIP(e EIP) bool {
	if !u.Valid() {
		return false
	}
	for cur, ok := u, true; ok; cur, ok = cur.Parent() {
		for _, own := range history[cur].eips {
			if own == e {
				return true
			}
		}
	}
	return false
}

// SupportsMnemonic reports whether some proposal included by u introduces m.
func (u Upgrade) SupportsMnemonic(m vm.Mnemonic) bool {
	if !u.Valid() {
		return false
	}
	return resolved[u].mnemonics.Contains(m)
}

// SupportsOpCode reports whether op is available under u. Unknown opcodes
// are never supported.
func (u Upgrade) SupportsOpCode(op vm.OpCode) bool {
	m, ok := op.Mnemonic()
	return ok && u.SupportsMnemonic(m)
}

// SupportsInstruction reports whether ins is available under u.
func (u Upgrade) SupportsInstruction(ins vm.Instruction) bool {
	return u.SupportsOpCode(ins.OpCode())
}

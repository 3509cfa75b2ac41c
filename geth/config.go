package geth

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/params"

	"github.com/eth2030/evmkit/core/forks"
)

// ChainConfig returns a go-ethereum ChainConfig with every upgrade up to
// and including u active from genesis. Constantinople keeps Petersburg
// disabled so go-ethereum does not fold the two together.
func ChainConfig(u forks.Upgrade) *params.ChainConfig {
	zero := big.NewInt(0)
	ts := uint64(0)
	c := &params.ChainConfig{ChainID: big.NewInt(int64(forks.Mainnet))}

	if u.IsDescendantOf(forks.Homestead) {
		c.HomesteadBlock = zero
	}
	if u.IsDescendantOf(forks.TangerineWhistle) {
		c.EIP150Block = zero
	}
	if u.IsDescendantOf(forks.SpuriousDragon) {
		c.EIP155Block = zero
		c.EIP158Block = zero
	}
	if u.IsDescendantOf(forks.Byzantium) {
		c.ByzantiumBlock = zero
	}
	if u.IsDescendantOf(forks.Constantinople) {
		c.ConstantinopleBlock = zero
		c.PetersburgBlock = big.NewInt(math.MaxInt64)
	}
	if u.IsDescendantOf(forks.Petersburg) {
		c.ConstantinopleBlock = zero
		c.PetersburgBlock = zero
	}
	if u.IsDescendantOf(forks.Istanbul) {
		c.IstanbulBlock = zero
	}
	if u.IsDescendantOf(forks.MuirGlacier) {
		c.MuirGlacierBlock = zero
	}
	if u.IsDescendantOf(forks.Berlin) {
		c.BerlinBlock = zero
	}
	if u.IsDescendantOf(forks.London) {
		c.LondonBlock = zero
	}
	if u.IsDescendantOf(forks.ArrowGlacier) {
		c.ArrowGlacierBlock = zero
	}
	if u.IsDescendantOf(forks.GrayGlacier) {
		c.GrayGlacierBlock = zero
	}
	if u.IsDescendantOf(forks.Paris) {
		c.MergeNetsplitBlock = zero
		c.TerminalTotalDifficulty = zero
	}
	if u.IsDescendantOf(forks.Shanghai) {
		c.ShanghaiTime = &ts
	}
	if u.IsDescendantOf(forks.Cancun) {
		c.CancunTime = &ts
	}
	if u.IsDescendantOf(forks.Prague) {
		c.PragueTime = &ts
	}
	return c
}

// UpgradeAt returns the latest upgrade cfg has activated at the given block
// number and timestamp. Upgrades go-ethereum does not track (Genesis,
// FrontierThawing) and those after Prague are not reported.
func UpgradeAt(cfg *params.ChainConfig, num *big.Int, isMerge bool, time uint64) forks.Upgrade {
	rules := cfg.Rules(num, isMerge, time)
	switch {
	case rules.IsPrague:
		return forks.Prague
	case rules.IsCancun:
		return forks.Cancun
	case rules.IsShanghai:
		return forks.Shanghai
	case rules.IsMerge:
		return forks.Paris
	case cfg.IsGrayGlacier(num):
		return forks.GrayGlacier
	case cfg.IsArrowGlacier(num):
		return forks.ArrowGlacier
	case rules.IsLondon:
		return forks.London
	case rules.IsBerlin:
		return forks.Berlin
	case cfg.IsMuirGlacier(num):
		return forks.MuirGlacier
	case rules.IsIstanbul:
		return forks.Istanbul
	case rules.IsPetersburg:
		return forks.Petersburg
	case rules.IsConstantinople:
		return forks.Constantinople
	case rules.IsByzantium:
		return forks.Byzantium
	case rules.IsEIP158:
		return forks.SpuriousDragon
	case rules.IsEIP150:
		return forks.TangerineWhistle
	case rules.IsHomestead:
		return forks.Homestead
	}
	return forks.Frontier
}

// forkBlock returns the activation block go-ethereum records for u, or nil
// for upgrades it does not schedule by block.
func forkBlock(cfg *params.ChainConfig, u forks.Upgrade) *big.Int {
	switch u {
	case forks.Homestead:
		return cfg.HomesteadBlock
	case forks.TangerineWhistle:
		return cfg.EIP150Block
	case forks.SpuriousDragon:
		return cfg.EIP158Block
	case forks.Byzantium:
		return cfg.ByzantiumBlock
	case forks.Constantinople:
		return cfg.ConstantinopleBlock
	case forks.Petersburg:
		return cfg.PetersburgBlock
	case forks.Istanbul:
		return cfg.IstanbulBlock
	case forks.MuirGlacier:
		return cfg.MuirGlacierBlock
	case forks.Berlin:
		return cfg.BerlinBlock
	case forks.London:
		return cfg.LondonBlock
	case forks.ArrowGlacier:
		return cfg.ArrowGlacierBlock
	case forks.GrayGlacier:
		return cfg.GrayGlacierBlock
	}
	return nil
}

// ForkBlock returns the block at which cfg activates u, for upgrades
// scheduled by block number.
func ForkBlock(cfg *params.ChainConfig, u forks.Upgrade) (uint64, bool) {
	b := forkBlock(cfg, u)
	if b == nil || !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

package geth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"

	"github.com/eth2030/evmkit/core/forks"
)

func TestChainConfigRoundTrip(t *testing.T) {
	for _, u := range forks.Upgrades() {
		cfg := ChainConfig(u)
		got := UpgradeAt(cfg, big.NewInt(0), u.IsDescendantOf(forks.Paris), 0)

		want := u
		switch u {
		case forks.Genesis, forks.FrontierThawing:
			want = forks.Frontier
		}
		require.Equal(t, want, got, "upgrade %v", u)
	}
}

func TestChainConfigConstantinopleBranch(t *testing.T) {
	cfg := ChainConfig(forks.Constantinople)
	rules := cfg.Rules(big.NewInt(0), false, 0)
	require.True(t, rules.IsConstantinople)
	require.False(t, rules.IsPetersburg)

	cfg = ChainConfig(forks.Petersburg)
	rules = cfg.Rules(big.NewInt(0), false, 0)
	require.True(t, rules.IsConstantinople)
	require.True(t, rules.IsPetersburg)
}

func TestMainnetActivationsMatchGeth(t *testing.T) {
	cfg := params.MainnetChainConfig
	for _, u := range forks.Upgrades() {
		block, ok := ForkBlock(cfg, u)
		if !ok {
			continue
		}
		require.Equal(t, block, forks.ActivationBlock(u, forks.Mainnet), "upgrade %v", u)

		want := u
		if u == forks.Constantinople {
			want = forks.Petersburg
		}
		got := UpgradeAt(cfg, new(big.Int).SetUint64(block), false, 0)
		require.Equal(t, want, got, "UpgradeAt block %d", block)
		require.Equal(t, want, forks.ActiveAt(forks.Mainnet, block))
	}
}

func TestUpgradeAtMainnetPostMerge(t *testing.T) {
	cfg := params.MainnetChainConfig
	tests := []struct {
		block uint64
		time  uint64
		want  forks.Upgrade
	}{
		{15_537_394, 1663224179, forks.Paris},
		{17_034_870, 1681338455, forks.Shanghai},
		{19_426_587, 1710338135, forks.Cancun},
		{22_431_084, 1746612311, forks.Prague},
	}
	for _, tt := range tests {
		got := UpgradeAt(cfg, new(big.Int).SetUint64(tt.block), true, tt.time)
		require.Equal(t, tt.want, got)
		require.Equal(t, tt.want, forks.ActiveAt(forks.Mainnet, tt.block))
	}
}

func TestForkBlockUnscheduled(t *testing.T) {
	_, ok := ForkBlock(params.MainnetChainConfig, forks.Shanghai)
	require.False(t, ok)
	_, ok = ForkBlock(ChainConfig(forks.Frontier), forks.Homestead)
	require.False(t, ok)
}

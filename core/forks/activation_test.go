package forks

import "testing"

func TestActiveAtMainnet(t *testing.T) {
	tests := []struct {
		block uint64
		want  Upgrade
	}{
		{0, Frontier},
		{199_999, Frontier},
		{200_000, FrontierThawing},
		{1_150_000, Homestead},
		{4_369_999, SpuriousDragon},
		{7_280_000, Petersburg},
		{9_069_000, Istanbul},
		{12_965_000, London},
		{15_537_393, GrayGlacier},
		{15_537_394, Paris},
		{17_034_870, Shanghai},
		{19_426_587, Cancun},
		{22_431_084, Prague},
		{^uint64(0), Prague},
	}
	for _, tt := range tests {
		if got := ActiveAt(Mainnet, tt.block); got != tt.want {
			t.Errorf("ActiveAt(mainnet, %d) = %v, want %v", tt.block, got, tt.want)
		}
	}
}

func TestActivationOrder(t *testing.T) {
	prev := uint64(0)
	for _, u := range Upgrades() {
		b := ActivationBlock(u, Mainnet)
		if b < prev {
			t.Errorf("%v activates at %d, before its predecessor at %d", u, b, prev)
		}
		prev = b
	}
}

func TestUnknownChain(t *testing.T) {
	if KnownChain(ChainID(12345)) {
		t.Fatal("chain 12345 should be unknown")
	}
	if b := ActivationBlock(Cancun, ChainID(12345)); b != 0 {
		t.Errorf("unknown chain activation = %d", b)
	}
	if u := ActiveAt(ChainID(12345), 0); u != Prague {
		t.Errorf("unknown chain at block 0 = %v, want Prague", u)
	}
}

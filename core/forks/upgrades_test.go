package forks

import (
	"errors"
	"slices"
	"testing"

	"github.com/eth2030/evmkit/core/vm"
)

func TestSupportsScenarios(t *testing.T) {
	tests := []struct {
		u    Upgrade
		m    vm.Mnemonic
		want bool
	}{
		{Homestead, vm.DELEGATECALL, true},
		{Frontier, vm.DELEGATECALL, false},
		{Shanghai, vm.PUSH0, true},
		{Paris, vm.PUSH0, false},
		{Genesis, vm.STOP, true},
		{Genesis, vm.ADD, true},
		{Frontier, vm.PREVRANDAO, true},
		{SpuriousDragon, vm.REVERT, false},
		{Byzantium, vm.REVERT, true},
		{Byzantium, vm.SHL, false},
		{Constantinople, vm.CREATE2, true},
		{Petersburg, vm.CREATE2, true},
		{Istanbul, vm.SELFBALANCE, true},
		{Berlin, vm.BASEFEE, false},
		{London, vm.BASEFEE, true},
		{Shanghai, vm.TLOAD, false},
		{Cancun, vm.MCOPY, true},
		{Cancun, vm.BLOBBASEFEE, true},
	}
	for _, tt := range tests {
		if got := tt.u.SupportsMnemonic(tt.m); got != tt.want {
			t.Errorf("%v.SupportsMnemonic(%v) = %v, want %v", tt.u, tt.m, got, tt.want)
		}
		if got := tt.u.SupportsOpCode(vm.KnownOpCode(tt.m)); got != tt.want {
			t.Errorf("%v.SupportsOpCode(%v) = %v, want %v", tt.u, tt.m, got, tt.want)
		}
	}
}

func TestIncludesEIPPetersburg(t *testing.T) {
	if !Constantinople.IncludesEIP(EIP1283) {
		t.Error("Constantinople should include EIP-1283")
	}
	if Petersburg.IncludesEIP(EIP1283) {
		t.Error("Petersburg should not include EIP-1283")
	}
	if Istanbul.IncludesEIP(EIP1283) || Prague.IncludesEIP(EIP1283) {
		t.Error("EIP-1283 must not leak past Petersburg")
	}
	if !Petersburg.IncludesEIP(EIP145) || !Istanbul.IncludesEIP(EIP1014) {
		t.Error("Petersburg line should keep the other Constantinople proposals")
	}
	if !Prague.IncludesEIP(EIPBase) || !Genesis.IncludesEIP(EIPBase) {
		t.Error("every upgrade includes the base proposal")
	}
	if Frontier.IncludesEIP(EIP7) {
		t.Error("Frontier should not include EIP-7")
	}
}

func TestUnknownUnsupported(t *testing.T) {
	for _, u := range Upgrades() {
		for _, b := range []byte{0x0c, 0x21, 0xef} {
			if u.SupportsOpCode(vm.OpCodeFromByte(b)) {
				t.Errorf("%v supports unknown 0x%02x", u, b)
			}
			if u.SupportsInstruction(vm.NewUnknown(b)) {
				t.Errorf("%v supports Unknown(0x%02x)", u, b)
			}
		}
		// An Unknown carrying a mapped byte is still unknown.
		if u.SupportsInstruction(vm.NewUnknown(byte(vm.ADD))) {
			t.Errorf("%v supports Unknown(0x01)", u)
		}
	}
	if !Shanghai.SupportsInstruction(vm.Push{}) || Paris.SupportsInstruction(vm.Push{}) {
		t.Error("PUSH0 instruction support mismatch")
	}
}

func TestMonotonicity(t *testing.T) {
	for _, u := range Upgrades() {
		for _, a := range u.Ancestors() {
			for _, e := range a.AllEIPs() {
				if !u.IncludesEIP(e) {
					t.Errorf("%v lost %v from ancestor %v", u, e, a)
				}
			}
			for _, m := range a.Mnemonics() {
				if !u.SupportsMnemonic(m) {
					t.Errorf("%v lost %v from ancestor %v", u, m, a)
				}
			}
		}
	}
	// Constantinople is not an ancestor of Petersburg.
	if Petersburg.IsDescendantOf(Constantinople) || Prague.IsDescendantOf(Constantinople) {
		t.Error("Constantinople must be a side branch")
	}
}

func TestIncludesEIPMatchesCache(t *testing.T) {
	for _, u := range Upgrades() {
		all := u.AllEIPs()
		for _, e := range EIPs() {
			if got, want := u.IncludesEIP(e), slices.Contains(all, e); got != want {
				t.Errorf("%v.IncludesEIP(%v) = %v, cache says %v", u, e, got, want)
			}
		}
	}
}

func TestHistoryShape(t *testing.T) {
	if _, ok := Genesis.Parent(); ok {
		t.Error("Genesis should have no parent")
	}
	parents := map[Upgrade]Upgrade{
		Frontier:       Genesis,
		Constantinople: Byzantium,
		Petersburg:     Byzantium,
		Istanbul:       Petersburg,
		Prague:         Cancun,
	}
	for u, want := range parents {
		if p, ok := u.Parent(); !ok || p != want {
			t.Errorf("%v.Parent() = %v, %v; want %v", u, p, ok, want)
		}
	}
	for _, u := range Upgrades() {
		if p, ok := u.Parent(); ok && p >= u {
			t.Errorf("%v declared before its parent %v", u, p)
		}
		anc := u.Ancestors()
		if u != Genesis && anc[len(anc)-1] != Genesis {
			t.Errorf("%v ancestry does not reach Genesis: %v", u, anc)
		}
	}
	if len(Upgrades()) != 19 {
		t.Errorf("len(Upgrades()) = %d", len(Upgrades()))
	}
	if !Prague.IsDescendantOf(Prague) || !Prague.IsDescendantOf(Genesis) || Homestead.IsDescendantOf(London) {
		t.Error("IsDescendantOf mismatch")
	}
}

func TestEveryMnemonicReachable(t *testing.T) {
	if got, want := len(Prague.Mnemonics()), len(vm.Mnemonics()); got != want {
		t.Errorf("Prague supports %d mnemonics, want %d", got, want)
	}
	for _, m := range vm.Mnemonics() {
		u, e, ok := IntroducedIn(m)
		if !ok {
			t.Errorf("%v never introduced", m)
			continue
		}
		if !u.IncludesEIP(e) || !slices.Contains(e.Introduces(), m) {
			t.Errorf("IntroducedIn(%v) = %v, %v", m, u, e)
		}
		if p, ok := u.Parent(); ok && p.SupportsMnemonic(m) {
			t.Errorf("IntroducedIn(%v) = %v, but parent %v already supports it", m, u, p)
		}
	}
}

func TestNewMnemonics(t *testing.T) {
	tests := []struct {
		u    Upgrade
		want []vm.Mnemonic
	}{
		{Frontier, nil},
		{Homestead, []vm.Mnemonic{vm.DELEGATECALL}},
		{Byzantium, []vm.Mnemonic{vm.RETURNDATASIZE, vm.RETURNDATACOPY, vm.STATICCALL, vm.REVERT}},
		{Constantinople, []vm.Mnemonic{vm.SHL, vm.SHR, vm.SAR, vm.EXTCODEHASH, vm.CREATE2}},
		{Istanbul, []vm.Mnemonic{vm.CHAINID, vm.SELFBALANCE}},
		{Shanghai, []vm.Mnemonic{vm.PUSH0}},
		{Cancun, []vm.Mnemonic{vm.BLOBHASH, vm.BLOBBASEFEE, vm.TLOAD, vm.TSTORE, vm.MCOPY}},
		{Prague, nil},
	}
	for _, tt := range tests {
		got := tt.u.NewMnemonics()
		if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
			t.Errorf("%v.NewMnemonics() = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestUpgradeByName(t *testing.T) {
	tests := []struct {
		name string
		want Upgrade
	}{
		{"prague", Prague},
		{"  Shanghai ", Shanghai},
		{"TANGERINEWHISTLE", TangerineWhistle},
		{"merge", Paris},
		{"dencun", Cancun},
		{"constantinople_fix", Petersburg},
	}
	for _, tt := range tests {
		got, err := UpgradeByName(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("UpgradeByName(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
	if _, err := UpgradeByName("osaka"); !errors.Is(err, ErrUnknownUpgrade) {
		t.Errorf("UpgradeByName(osaka) err = %v", err)
	}
	for _, u := range Upgrades() {
		got, err := UpgradeByName(u.String())
		if err != nil || got != u {
			t.Errorf("UpgradeByName(%v) = %v, %v", u, got, err)
		}
	}
}

func TestUpgradeText(t *testing.T) {
	var u Upgrade
	if err := u.UnmarshalText([]byte("cancun")); err != nil || u != Cancun {
		t.Fatalf("UnmarshalText = %v, %v", u, err)
	}
	text, err := London.MarshalText()
	if err != nil || string(text) != "London" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
	if _, err := Upgrade(200).MarshalText(); err == nil {
		t.Error("MarshalText of invalid upgrade should fail")
	}
	if Upgrade(200).SupportsMnemonic(vm.ADD) || Upgrade(200).IncludesEIP(EIPBase) {
		t.Error("invalid upgrade should support nothing")
	}
}

package forks

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/eth2030/evmkit/core/vm"
)

// EIP identifies an Ethereum Improvement Proposal by number.
type EIP uint32

// EIPBase is the synthetic proposal owning the instruction set that shipped
// at genesis.
const EIPBase EIP = 0

// Proposals scheduled into mainnet upgrades.
const (
	EIP2    EIP = 2
	EIP7    EIP = 7
	EIP8    EIP = 8
	EIP100  EIP = 100
	EIP140  EIP = 140
	EIP145  EIP = 145
	EIP150  EIP = 150
	EIP152  EIP = 152
	EIP155  EIP = 155
	EIP160  EIP = 160
	EIP161  EIP = 161
	EIP170  EIP = 170
	EIP196  EIP = 196
	EIP197  EIP = 197
	EIP198  EIP = 198
	EIP211  EIP = 211
	EIP214  EIP = 214
	EIP649  EIP = 649
	EIP658  EIP = 658
	EIP1014 EIP = 1014
	EIP1052 EIP = 1052
	EIP1108 EIP = 1108
	EIP1153 EIP = 1153
	EIP1234 EIP = 1234
	EIP1283 EIP = 1283
	EIP1344 EIP = 1344
	EIP1559 EIP = 1559
	EIP1884 EIP = 1884
	EIP2028 EIP = 2028
	EIP2200 EIP = 2200
	EIP2384 EIP = 2384
	EIP2537 EIP = 2537
	EIP2565 EIP = 2565
	EIP2718 EIP = 2718
	EIP2929 EIP = 2929
	EIP2930 EIP = 2930
	EIP2935 EIP = 2935
	EIP3198 EIP = 3198
	EIP3529 EIP = 3529
	EIP3541 EIP = 3541
	EIP3554 EIP = 3554
	EIP3651 EIP = 3651
	EIP3675 EIP = 3675
	EIP3855 EIP = 3855
	EIP3860 EIP = 3860
	EIP4345 EIP = 4345
	EIP4399 EIP = 4399
	EIP4788 EIP = 4788
	EIP4844 EIP = 4844
	EIP4895 EIP = 4895
	EIP5133 EIP = 5133
	EIP5656 EIP = 5656
	EIP6049 EIP = 6049
	EIP6110 EIP = 6110
	EIP6780 EIP = 6780
	EIP7002 EIP = 7002
	EIP7044 EIP = 7044
	EIP7045 EIP = 7045
	EIP7251 EIP = 7251
	EIP7514 EIP = 7514
	EIP7516 EIP = 7516
	EIP7549 EIP = 7549
	EIP7623 EIP = 7623
	EIP7685 EIP = 7685
	EIP7691 EIP = 7691
	EIP7702 EIP = 7702
	EIP7840 EIP = 7840
)

type eipInfo struct {
	title      string
	introduces []vm.Mnemonic
}

// eipTable lists every known proposal.
var eipTable = withBaseInstructions(map[EIP]*eipInfo{
	EIPBase: {title: "Frontier instruction set"},

	EIP2: {title: "Homestead hard-fork changes"},
	EIP7: {title: "DELEGATECALL", introduces: []vm.Mnemonic{vm.DELEGATECALL}},
	EIP8: {title: "devp2p forward compatibility requirements for Homestead"},

	EIP150: {title: "Gas cost changes for IO-heavy operations"},

	EIP155: {title: "Simple replay attack protection"},
	EIP160: {title: "EXP cost increase"},
	EIP161: {title: "State trie clearing"},
	EIP170: {title: "Contract code size limit"},

	EIP100: {title: "Change difficulty adjustment to target mean block time including uncles"},
	EIP140: {title: "REVERT instruction", introduces: []vm.Mnemonic{vm.REVERT}},
	EIP196: {title: "Precompiled contracts for addition and scalar multiplication on alt_bn128"},
	EIP197: {title: "Precompiled contracts for optimal ate pairing check on alt_bn128"},
	EIP198: {title: "Big integer modular exponentiation"},
	EIP211: {title: "New opcodes: RETURNDATASIZE and RETURNDATACOPY", introduces: []vm.Mnemonic{vm.RETURNDATASIZE, vm.RETURNDATACOPY}},
	EIP214: {title: "New opcode STATICCALL", introduces: []vm.Mnemonic{vm.STATICCALL}},
	EIP649: {title: "Metropolis difficulty bomb delay and block reward reduction"},
	EIP658: {title: "Embedding transaction status code in receipts"},

	EIP145:  {title: "Bitwise shifting instructions in EVM", introduces: []vm.Mnemonic{vm.SHL, vm.SHR, vm.SAR}},
	EIP1014: {title: "Skinny CREATE2", introduces: []vm.Mnemonic{vm.CREATE2}},
	EIP1052: {title: "EXTCODEHASH opcode", introduces: []vm.Mnemonic{vm.EXTCODEHASH}},
	EIP1234: {title: "Constantinople difficulty bomb delay and block reward adjustment"},
	EIP1283: {title: "Net gas metering for SSTORE without dirty maps"},

	EIP152:  {title: "Add BLAKE2 compression function F precompile"},
	EIP1108: {title: "Reduce alt_bn128 precompile gas costs"},
	EIP1344: {title: "ChainID opcode", introduces: []vm.Mnemonic{vm.CHAINID}},
	EIP1884: {title: "Repricing for trie-size-dependent opcodes", introduces: []vm.Mnemonic{vm.SELFBALANCE}},
	EIP2028: {title: "Transaction data gas cost reduction"},
	EIP2200: {title: "Structured definitions for net gas metering"},

	EIP2384: {title: "Muir Glacier difficulty bomb delay"},

	EIP2565: {title: "ModExp gas cost"},
	EIP2718: {title: "Typed transaction envelope"},
	EIP2929: {title: "Gas cost increases for state access opcodes"},
	EIP2930: {title: "Optional access lists"},

	EIP1559: {title: "Fee market change for ETH 1.0 chain"},
	EIP3198: {title: "BASEFEE opcode", introduces: []vm.Mnemonic{vm.BASEFEE}},
	EIP3529: {title: "Reduction in refunds"},
	EIP3541: {title: "Reject new contract code starting with the 0xEF byte"},
	EIP3554: {title: "Difficulty bomb delay to December 2021"},

	EIP4345: {title: "Difficulty bomb delay to June 2022"},

	EIP5133: {title: "Delaying difficulty bomb to mid-September 2022"},

	EIP3675: {title: "Upgrade consensus to Proof-of-Stake"},
	EIP4399: {title: "Supplant DIFFICULTY opcode with PREVRANDAO"},

	EIP3651: {title: "Warm COINBASE"},
	EIP3855: {title: "PUSH0 instruction", introduces: []vm.Mnemonic{vm.PUSH0}},
	EIP3860: {title: "Limit and meter initcode"},
	EIP4895: {title: "Beacon chain push withdrawals as operations"},
	EIP6049: {title: "Deprecate SELFDESTRUCT"},

	EIP1153: {title: "Transient storage opcodes", introduces: []vm.Mnemonic{vm.TLOAD, vm.TSTORE}},
	EIP4788: {title: "Beacon block root in the EVM"},
	EIP4844: {title: "Shard blob transactions", introduces: []vm.Mnemonic{vm.BLOBHASH}},
	EIP5656: {title: "MCOPY memory copying instruction", introduces: []vm.Mnemonic{vm.MCOPY}},
	EIP6780: {title: "SELFDESTRUCT only in same transaction"},
	EIP7044: {title: "Perpetually valid signed voluntary exits"},
	EIP7045: {title: "Increase max attestation inclusion slot"},
	EIP7514: {title: "Add max epoch churn limit"},
	EIP7516: {title: "BLOBBASEFEE instruction", introduces: []vm.Mnemonic{vm.BLOBBASEFEE}},

	EIP2537: {title: "Precompile for BLS12-381 curve operations"},
	EIP2935: {title: "Serve historical block hashes from state"},
	EIP6110: {title: "Supply validator deposits on chain"},
	EIP7002: {title: "Execution layer triggerable withdrawals"},
	EIP7251: {title: "Increase the MAX_EFFECTIVE_BALANCE"},
	EIP7549: {title: "Move committee index outside Attestation"},
	EIP7623: {title: "Increase calldata cost"},
	EIP7685: {title: "General purpose execution layer requests"},
	EIP7691: {title: "Blob throughput increase"},
	EIP7702: {title: "Set code for EOAs"},
	EIP7840: {title: "Add blob schedule to EL config files"},
})

// withBaseInstructions assigns to the base entry every mnemonic that no other
// proposal claims.
func withBaseInstructions(table map[EIP]*eipInfo) map[EIP]*eipInfo {
	claimed := make(map[vm.Mnemonic]EIP)
	for e, info := range table {
		for _, m := range info.introduces {
			if prev, dup := claimed[m]; dup {
				panic(fmt.Sprintf("forks: %v introduced by both %v and %v", m, prev, e))
			}
			claimed[m] = e
		}
	}
	base := table[EIPBase]
	for _, m := range vm.Mnemonics() {
		if _, ok := claimed[m]; !ok {
			base.introduces = append(base.introduces, m)
		}
	}
	return table
}

// Known reports whether e is in the proposal table.
func (e EIP) Known() bool {
	_, ok := eipTable[e]
	return ok
}

// Title returns the proposal's short title, or "" if e is unknown.
func (e EIP) Title() string {
	if info, ok := eipTable[e]; ok {
		return info.title
	}
	return ""
}

// Introduces returns the mnemonics first made available by e, in byte order.
func (e EIP) Introduces() []vm.Mnemonic {
	info, ok := eipTable[e]
	if !ok {
		return nil
	}
	out := slices.Clone(info.introduces)
	slices.Sort(out)
	return out
}

func (e EIP) String() string {
	if e == EIPBase {
		return "EIP-base"
	}
	return "EIP-" + strconv.FormatUint(uint64(e), 10)
}

// EIPs returns every known proposal in numeric order, base first.
func EIPs() []EIP {
	out := make([]EIP, 0, len(eipTable))
	for e := range eipTable {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// ParseEIP parses "1559", "EIP-1559" or "eip1559".
func ParseEIP(s string) (EIP, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	t = strings.TrimPrefix(t, "EIP")
	t = strings.TrimPrefix(t, "-")
	n, err := strconv.ParseUint(t, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid EIP %q", s)
	}
	return EIP(n), nil
}

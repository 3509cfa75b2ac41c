package forks

// ChainID is an EIP-155 chain identifier.
type ChainID uint64

// Mainnet is the Ethereum main network.
const Mainnet ChainID = 1

// Activation blocks per chain. Upgrades scheduled by timestamp after the
// merge are listed by the first block produced under them.
var activations = map[ChainID]map[Upgrade]uint64{
	Mainnet: {
		Genesis:          0,
		Frontier:         0,
		FrontierThawing:  200_000,
		Homestead:        1_150_000,
		TangerineWhistle: 2_463_000,
		SpuriousDragon:   2_675_000,
		Byzantium:        4_370_000,
		Constantinople:   7_280_000,
		Petersburg:       7_280_000,
		Istanbul:         9_069_000,
		MuirGlacier:      9_200_000,
		Berlin:           12_244_000,
		London:           12_965_000,
		ArrowGlacier:     13_773_000,
		GrayGlacier:      15_050_000,
		Paris:            15_537_394,
		Shanghai:         17_034_870,
		Cancun:           19_426_587,
		Prague:           22_431_084,
	},
}

// KnownChain reports whether activation data exists for chain.
func KnownChain(chain ChainID) bool {
	_, ok := activations[chain]
	return ok
}

// ActivationBlock returns the block at which u activates on chain. Pairs
// without data activate at block 0.
func ActivationBlock(u Upgrade, chain ChainID) uint64 {
	return activations[chain][u]
}

// ActiveAt returns the upgrade in force on chain at block: the last upgrade
// in history order whose activation block is not after block. When two
// upgrades share a block the later one wins, so Petersburg shadows
// Constantinople on mainnet.
func ActiveAt(chain ChainID, block uint64) Upgrade {
	active := Genesis
	for _, u := range Upgrades() {
		if ActivationBlock(u, chain) <= block {
			active = u
		}
	}
	return active
}

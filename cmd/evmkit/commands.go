package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/evmkit/core/asm"
	"github.com/eth2030/evmkit/core/forks"
	"github.com/eth2030/evmkit/core/vm"
)

var errMnemonicNotFound = errors.New("no such mnemonic")

// fork returns the upgrade selected for this command, honouring a --fork
// given after the command name.
func (e *env) fork(ctx *cli.Context) (forks.Upgrade, error) {
	if !ctx.IsSet(forkFlag.Name) {
		return e.cfg.Fork, nil
	}
	u, err := forks.UpgradeByName(ctx.String(forkFlag.Name))
	if err != nil {
		return 0, cli.Exit(err, 2)
	}
	return u, nil
}

func introduced(m vm.Mnemonic) string {
	u, eip, ok := forks.IntroducedIn(m)
	switch {
	case !ok:
		return "-"
	case eip == forks.EIPBase:
		return u.String()
	}
	return fmt.Sprintf("%v (%v)", u, eip)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// --- opcodes ---

func opcodesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:   "opcodes",
		Usage:  "List every mnemonic available under a fork",
		Flags:  []cli.Flag{forkFlag},
		Action: e.listOpcodes,
	}
}

func (e *env) listOpcodes(ctx *cli.Context) error {
	fork, err := e.fork(ctx)
	if err != nil {
		return err
	}
	t := e.newTable(table.Row{"Hex", "Bin", "Oct", "Mnemonic", "Imm", "Pops", "Pushes", "Since"})
	mnemonics := fork.Mnemonics()
	for _, m := range mnemonics {
		b := m.Byte()
		req := m.StackRequirement()
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%02x", b),
			fmt.Sprintf("%08b", b),
			fmt.Sprintf("%03o", b),
			m.String(),
			m.ImmediateSize(),
			req.Pops,
			req.Pushes,
			introduced(m),
		})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d opcodes", len(mnemonics)), "", "", "", fork.String()})
	return e.page(t.Render() + "\n")
}

// --- describe ---

func describeCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Describe one mnemonic by name (case-insensitive)",
		ArgsUsage: "NAME",
		Flags:     []cli.Flag{forkFlag},
		Action:    e.describe,
	}
}

func (e *env) describe(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return cli.Exit("describe: mnemonic name required", 2)
	}
	m, ok := vm.MnemonicByName(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("%v: %q", errMnemonicNotFound, name), 1)
	}
	fork, err := e.fork(ctx)
	if err != nil {
		return err
	}

	b := m.Byte()
	req := m.StackRequirement()
	t := e.newTable(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Mnemonic", m.String()})
	if !strings.EqualFold(strings.TrimSpace(name), m.String()) {
		t.AppendRow(table.Row{"Alias", strings.ToUpper(strings.TrimSpace(name))})
	}
	t.AppendRow(table.Row{"Opcode", fmt.Sprintf("0x%02x  0b%08b  0o%03o  %d", b, b, b, b)})
	t.AppendRow(table.Row{"Immediate", fmt.Sprintf("%d bytes", m.ImmediateSize())})
	t.AppendRow(table.Row{"Stack", fmt.Sprintf("pops %d, pushes %d (delta %+d)", req.Pops, req.Pushes, req.Delta)})
	if n, ok := m.FamilyIndex(); ok {
		t.AppendRow(table.Row{"Family index", n})
	}
	t.AppendRow(table.Row{"Terminator", yesNo(m.IsTerminator())})
	t.AppendRow(table.Row{"Control flow", yesNo(m.IsControlFlow())})
	if u, eip, ok := forks.IntroducedIn(m); ok {
		t.AppendRow(table.Row{"Introduced", fmt.Sprintf("%v by %v: %s", u, eip, eip.Title())})
	}
	t.AppendRow(table.Row{"Available in " + fork.String(), yesNo(fork.SupportsMnemonic(m))})
	_, err = fmt.Fprintln(e.stdout, t.Render())
	return err
}

// --- disasm ---

var (
	fileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "read bytecode from a file (hex text or raw bytes)",
	}
	statsFlag = &cli.BoolFlag{
		Name:  "stats",
		Usage: "print opcode statistics",
	}
	blocksFlag = &cli.BoolFlag{
		Name:  "blocks",
		Usage: "print basic blocks",
	}
)

func disasmCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "disasm",
		Usage:     "Disassemble bytecode",
		ArgsUsage: "[HEX]",
		Flags:     []cli.Flag{forkFlag, fileFlag, statsFlag, blocksFlag},
		Action:    e.disasm,
	}
}

func (e *env) loadCode(ctx *cli.Context) ([]byte, error) {
	if path := ctx.String(fileFlag.Name); path != "" {
		if ctx.Args().Present() {
			return nil, cli.Exit("disasm: give either HEX or --file, not both", 2)
		}
		return asm.LoadFile(path)
	}
	if !ctx.Args().Present() {
		return nil, cli.Exit("disasm: bytecode required (HEX or --file)", 2)
	}
	return asm.ParseHex(strings.Join(ctx.Args().Slice(), ""))
}

func codeHash(code []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(code)
	return h.Sum(nil)
}

func (e *env) disasm(ctx *cli.Context) error {
	fork, err := e.fork(ctx)
	if err != nil {
		return err
	}
	code, err := e.loadCode(ctx)
	if err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			return err
		}
		return cli.Exit(err, 1)
	}
	prog := asm.Disassemble(code)
	e.log.Debug("Disassembled bytecode", "size", len(code), "instructions", len(prog))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "code hash: %s\n", hexutil.Encode(codeHash(code)))
	fmt.Fprintf(&buf, "size:      %d bytes\n", len(code))
	fmt.Fprintf(&buf, "fork:      %v\n\n", fork)

	unsupported := mapset.NewThreadUnsafeSet[int]()
	for _, p := range asm.Unsupported(prog, fork.SupportsMnemonic) {
		unsupported.Add(p.Position())
	}
	if unsupported.Cardinality() == 0 {
		if err := asm.Format(&buf, prog); err != nil {
			return err
		}
	} else {
		for _, p := range prog {
			buf.WriteString(p.String())
			if unsupported.Contains(p.Position()) {
				if p.Instruction().OpCode().IsKnown() {
					fmt.Fprintf(&buf, "    ; not available in %v", fork)
				} else {
					buf.WriteString("    ; invalid")
				}
			}
			buf.WriteByte('\n')
		}
	}

	if ctx.Bool(blocksFlag.Name) {
		buf.WriteByte('\n')
		writeBlocks(&buf, asm.BasicBlocks(prog))
	}
	if ctx.Bool(statsFlag.Name) {
		buf.WriteByte('\n')
		buf.WriteString(e.statsTable(prog, unsupported.Cardinality()))
		buf.WriteByte('\n')
	}
	return e.page(buf.String())
}

func writeBlocks(buf *bytes.Buffer, blocks []*asm.BasicBlock) {
	for i, b := range blocks {
		fmt.Fprintf(buf, "block %d: %06x-%06x, %d instructions", i, b.Start, b.End, len(b.Instructions))
		if b.JumpTarget >= 0 {
			fmt.Fprintf(buf, ", jumps to %06x", b.JumpTarget)
		}
		if !b.FallsThrough() {
			buf.WriteString(", ends")
		}
		buf.WriteByte('\n')
	}
}

func (e *env) statsTable(prog []asm.PositionedInstruction, unsupported int) string {
	stats := asm.Collect(prog)
	ops := make([]vm.OpCode, 0, len(stats.Counts))
	for op := range stats.Counts {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b vm.OpCode) int {
		if c := cmp.Compare(stats.Counts[b], stats.Counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a.Byte(), b.Byte())
	})

	t := e.newTable(table.Row{"Opcode", "Count"})
	for _, op := range ops {
		t.AppendRow(table.Row{op.String(), stats.Counts[op]})
	}
	var stack string
	if bounds, err := asm.ValidateStack(prog, 0); err != nil {
		stack = err.Error()
	} else {
		stack = fmt.Sprintf("max depth %d", bounds.Max)
	}
	t.AppendFooter(table.Row{"instructions", stats.Instructions})
	t.AppendFooter(table.Row{"unknown", stats.Unknown})
	t.AppendFooter(table.Row{"unsupported", unsupported})
	t.AppendFooter(table.Row{"push bytes", stats.PushBytes})
	t.AppendFooter(table.Row{"jumpdests", asm.JumpDests(prog).Cardinality()})
	t.AppendFooter(table.Row{"basic blocks", len(asm.BasicBlocks(prog))})
	t.AppendFooter(table.Row{"linear stack", stack})
	return t.Render()
}

// --- forks ---

var blockFlag = &cli.Uint64Flag{
	Name:     "block",
	Usage:    "block number",
	Required: true,
}

func forksCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:   "forks",
		Usage:  "Show the upgrade history",
		Action: e.listForks,
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one upgrade",
				ArgsUsage: "NAME",
				Action:    e.showFork,
			},
			{
				Name:   "at",
				Usage:  "Resolve the upgrade active at a block",
				Flags:  []cli.Flag{chainFlag, blockFlag},
				Action: e.forkAt,
			},
		},
	}
}

func mnemonicNames(ms []vm.Mnemonic) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func (e *env) listForks(ctx *cli.Context) error {
	chain := forks.ChainID(e.cfg.Chain)
	t := e.newTable(table.Row{"Upgrade", "Parent", "Block", "EIPs", "New opcodes"})
	for _, u := range forks.Upgrades() {
		parent := "-"
		if p, ok := u.Parent(); ok {
			parent = p.String()
		}
		t.AppendRow(table.Row{
			u.String(),
			parent,
			forks.ActivationBlock(u, chain),
			len(u.EIPs()),
			mnemonicNames(u.NewMnemonics()),
		})
	}
	return e.page(t.Render() + "\n")
}

func (e *env) showFork(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return cli.Exit("forks show: upgrade name required", 2)
	}
	u, err := forks.UpgradeByName(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%v\n", u)
	if p, ok := u.Parent(); ok {
		fmt.Fprintf(&buf, "parent:      %v\n", p)
	}
	fmt.Fprintf(&buf, "activation:  block %d on chain %d\n", forks.ActivationBlock(u, forks.ChainID(e.cfg.Chain)), e.cfg.Chain)
	fmt.Fprintf(&buf, "included:    %d EIPs, %d opcodes\n", len(u.AllEIPs()), len(u.Mnemonics()))
	if ms := u.NewMnemonics(); len(ms) > 0 {
		fmt.Fprintf(&buf, "new opcodes: %s\n", mnemonicNames(ms))
	}
	if eips := u.EIPs(); len(eips) > 0 {
		t := e.newTable(table.Row{"EIP", "Title", "Introduces"})
		for _, eip := range eips {
			t.AppendRow(table.Row{eip.String(), eip.Title(), mnemonicNames(eip.Introduces())})
		}
		buf.WriteString(t.Render())
		buf.WriteByte('\n')
	}
	_, err = e.stdout.Write(buf.Bytes())
	return err
}

func (e *env) forkAt(ctx *cli.Context) error {
	chain := forks.ChainID(e.cfg.Chain)
	if ctx.IsSet(chainFlag.Name) {
		chain = forks.ChainID(ctx.Uint64(chainFlag.Name))
	}
	if !forks.KnownChain(chain) {
		e.log.Warn("No activation data for chain, assuming all upgrades at genesis", "chain", uint64(chain))
	}
	block := ctx.Uint64(blockFlag.Name)
	u := forks.ActiveAt(chain, block)
	_, err := fmt.Fprintf(e.stdout, "%v\n", u)
	return err
}

// --- eip ---

func eipCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "eip",
		Usage:     "Show what an EIP introduces and which upgrades include it",
		ArgsUsage: "NUMBER",
		Action:    e.showEIP,
	}
}

func (e *env) showEIP(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.Exit("eip: number required", 2)
	}
	eip, err := forks.ParseEIP(ctx.Args().First())
	if err != nil {
		return cli.Exit(err, 2)
	}
	if !eip.Known() {
		return cli.Exit(fmt.Sprintf("%v is not scheduled in any known upgrade", eip), 1)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%v: %s\n", eip, eip.Title())
	if ms := eip.Introduces(); len(ms) > 0 {
		fmt.Fprintf(&buf, "introduces:  %s\n", mnemonicNames(ms))
	}
	included := forks.IncludedBy(eip)
	names := make([]string, len(included))
	for i, u := range included {
		names[i] = u.String()
	}
	fmt.Fprintf(&buf, "included by: %s\n", strings.Join(names, " "))
	_, err = e.stdout.Write(buf.Bytes())
	return err
}

// --- config ---

func configCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as TOML",
		Action: func(ctx *cli.Context) error {
			out, err := e.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(out)
			return err
		},
	}
}

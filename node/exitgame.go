package node

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kfichter/plasma-core/node/store"
	"github.com/kfichter/plasma-core/plasma"
)

// ExitGame is the exit/challenge state machine over one plasma chain. All
// mutating operations are serialized under one lock and each performs a
// single store transaction, so no partial application of a multi-step
// check is ever observable. Time is always caller-supplied as a ledger
// timestamp; this package never reads the wall clock.
type ExitGame struct {
	mu sync.Mutex

	cfg      Config
	operator common.Address
	db       *store.DB

	currentBlock uint64
	roots        map[uint64][32]byte
	exits        map[plasma.Position]plasma.Exit
	states       map[plasma.Position]plasma.ExitState
	balances     map[common.Address]uint64
	queue        *ExitQueue
}

func NewExitGame(cfg Config, db *store.DB) (*ExitGame, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("store required")
	}
	g := &ExitGame{
		cfg:      cfg,
		operator: cfg.OperatorAddress(),
		db:       db,
		queue:    NewExitQueue(),
	}
	if err := g.restore(); err != nil {
		return nil, err
	}
	return g, nil
}

// restore rebuilds the in-memory mirrors and the priority queue from the
// store. Block numbering starts at 1 on first use.
func (g *ExitGame) restore() error {
	blk, err := g.db.CurrentBlock()
	if err != nil {
		return fmt.Errorf("load current block: %w", err)
	}
	if blk == 0 {
		blk = 1
		if err := g.db.SetCurrentBlock(blk); err != nil {
			return fmt.Errorf("init current block: %w", err)
		}
	}
	g.currentBlock = blk

	if g.roots, err = g.db.LoadRoots(); err != nil {
		return fmt.Errorf("load roots: %w", err)
	}
	if g.exits, err = g.db.LoadExits(); err != nil {
		return fmt.Errorf("load exits: %w", err)
	}
	if g.states, err = g.db.LoadStates(); err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	if g.balances, err = g.db.LoadBalances(); err != nil {
		return fmt.Errorf("load balances: %w", err)
	}
	for pos, e := range g.exits {
		if err := g.queue.Insert(QueueEntry{ExitableAt: e.ExitableAt, Position: pos}); err != nil {
			return fmt.Errorf("rebuild queue: %w", err)
		}
	}
	return nil
}

// Deposit accepts the canonical encoding of a deposit transaction and the
// value backing it, commits the single-transaction block root at the next
// block number, and returns the position the deposit output can later be
// exited from.
func (g *ExitGame) Deposit(encodedTx []byte, value uint64) (DepositCreated, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, err := plasma.ParseTx(encodedTx)
	if err != nil {
		return DepositCreated{}, err
	}
	if !tx.Inputs[0].IsZero() || !tx.Inputs[1].IsZero() || !tx.Outputs[1].IsZero() || tx.Outputs[0].IsZero() {
		return DepositCreated{}, plasma.Errf(plasma.TX_ERR_MALFORMED, "not a canonical deposit transaction")
	}
	if tx.Outputs[0].Amount != value {
		return DepositCreated{}, plasma.Errf(plasma.EXIT_ERR_WRONG_VALUE, "deposit output %d does not match value %d", tx.Outputs[0].Amount, value)
	}

	blk := g.currentBlock
	pos, err := plasma.NewPosition(blk, 0, 0)
	if err != nil {
		return DepositCreated{}, err
	}
	root := plasma.DepositRoot(encodedTx, g.cfg.TreeHeight)
	if err := g.db.CommitBlockRoot(blk, root, blk+1); err != nil {
		return DepositCreated{}, err
	}
	g.roots[blk] = root
	g.currentBlock = blk + 1

	return DepositCreated{Owner: tx.Outputs[0].Owner, Amount: value, BlockPosition: pos}, nil
}

// SubmitBlock commits a child-chain block root at the next block number.
// Only the operator configured at construction may call it.
func (g *ExitGame) SubmitBlock(caller common.Address, root [32]byte) (BlockCommitted, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if caller != g.operator {
		return BlockCommitted{}, plasma.Errf(plasma.ERR_NOT_AUTHORIZED, "caller %s is not the operator", caller.Hex())
	}
	blk := g.currentBlock
	if err := g.db.CommitBlockRoot(blk, root, blk+1); err != nil {
		return BlockCommitted{}, err
	}
	g.roots[blk] = root
	g.currentBlock = blk + 1

	return BlockCommitted{BlockNumber: blk, Root: root}, nil
}

// StartExit opens a withdrawal claim for the output at pos. The caller
// must prove inclusion of the transaction that created the output, own
// that output, and attach the exact exit bond. The claim becomes
// finalizable at now + challenge period.
func (g *ExitGame) StartExit(caller common.Address, pos plasma.Position, encodedTx, proof, sigs []byte, bond uint64, now uint64) (ExitStarted, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if st := g.stateOf(pos); st != plasma.StateNonExistent {
		return ExitStarted{}, plasma.Errf(plasma.EXIT_ERR_DUPLICATE, "position %d already exited (%s)", pos, st)
	}
	blkNum, txIndex, outIndex, err := pos.Decode()
	if err != nil {
		return ExitStarted{}, err
	}
	tx, err := plasma.ParseTx(encodedTx)
	if err != nil {
		return ExitStarted{}, err
	}
	if len(sigs)%plasma.SignatureLength != 0 {
		return ExitStarted{}, plasma.Errf(plasma.SIG_ERR_LENGTH, "signatures length %d not a multiple of %d", len(sigs), plasma.SignatureLength)
	}

	root, ok := g.roots[blkNum]
	if !ok {
		return ExitStarted{}, plasma.Errf(plasma.BLOCK_ERR_UNKNOWN_ROOT, "no committed root for block %d", blkNum)
	}
	txHash := tx.Hash()
	if !plasma.CheckMembership(txHash, txIndex, root, proof, g.cfg.TreeHeight) {
		return ExitStarted{}, plasma.Errf(plasma.EXIT_ERR_INVALID_PROOF, "transaction not proven at block %d index %d", blkNum, txIndex)
	}
	out, ok := tx.OutputAt(outIndex)
	if !ok {
		return ExitStarted{}, plasma.Errf(plasma.EXIT_ERR_UNKNOWN_OUTPUT, "output %d not present on transaction", outIndex)
	}
	if out.Owner != caller {
		return ExitStarted{}, plasma.Errf(plasma.EXIT_ERR_NOT_OWNER, "caller %s does not own output %d", caller.Hex(), outIndex)
	}
	if bond != g.cfg.ExitBond {
		return ExitStarted{}, plasma.Errf(plasma.EXIT_ERR_WRONG_BOND, "bond %d does not match required %d", bond, g.cfg.ExitBond)
	}

	exit := plasma.Exit{
		Owner:      out.Owner,
		Amount:     out.Amount,
		Position:   pos,
		Bond:       bond,
		CreatedAt:  now,
		ExitableAt: now + g.cfg.ChallengePeriod,
	}
	if err := g.queue.Insert(QueueEntry{ExitableAt: exit.ExitableAt, Position: pos}); err != nil {
		return ExitStarted{}, err
	}
	if err := g.db.SaveStartedExit(exit); err != nil {
		g.queue.Remove(pos)
		return ExitStarted{}, err
	}
	g.exits[pos] = exit
	g.states[pos] = plasma.StatePending

	return ExitStarted{Owner: out.Owner, Position: pos, Amount: out.Amount}, nil
}

// ChallengeExit removes a pending exit by demonstrating a double-spend: a
// committed transaction that spends the exiting output, confirmed by the
// exiting owner's own signatures. The forfeited bond becomes withdrawable
// by the challenger.
func (g *ExitGame) ChallengeExit(challenger common.Address, exitingPos, spendingPos plasma.Position, encodedSpendingTx, proof, sigs, confSigs []byte) (ExitChallenged, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.stateOf(exitingPos) {
	case plasma.StatePending:
	case plasma.StateFinalized:
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_ALREADY_FINALIZED, "exit %d already finalized", exitingPos)
	default:
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_NOT_FOUND, "no pending exit for position %d", exitingPos)
	}
	exit := g.exits[exitingPos]

	tx, err := plasma.ParseTx(encodedSpendingTx)
	if err != nil {
		return ExitChallenged{}, err
	}
	inputIndex, ok := tx.SpendsPosition(exitingPos)
	if !ok {
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_SPEND_MISMATCH, "spending transaction does not reference position %d", exitingPos)
	}

	blkNum, txIndex, _, err := spendingPos.Decode()
	if err != nil {
		return ExitChallenged{}, err
	}
	root, ok := g.roots[blkNum]
	if !ok {
		return ExitChallenged{}, plasma.Errf(plasma.BLOCK_ERR_UNKNOWN_ROOT, "no committed root for block %d", blkNum)
	}
	txHash := tx.Hash()
	if !plasma.CheckMembership(txHash, txIndex, root, proof, g.cfg.TreeHeight) {
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_INVALID_PROOF, "spend not proven at block %d index %d", blkNum, txIndex)
	}

	ok, err = plasma.ValidateSignatures(txHash, sigs, confSigs)
	if err != nil {
		return ExitChallenged{}, err
	}
	if !ok {
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_SIG_MISMATCH, "confirmation signatures inconsistent with spend signatures")
	}
	off := inputIndex * plasma.SignatureLength
	if off+plasma.SignatureLength > len(sigs) {
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_SIG_MISMATCH, "no signature for input %d", inputIndex)
	}
	signer, err := plasma.RecoverSigner(txHash, sigs[off:off+plasma.SignatureLength])
	if err != nil || signer != exit.Owner {
		return ExitChallenged{}, plasma.Errf(plasma.EXIT_ERR_SIG_MISMATCH, "input %d signer is not the exiting owner", inputIndex)
	}

	if err := g.db.RemoveChallengedExit(exitingPos, challenger, exit.Bond); err != nil {
		return ExitChallenged{}, err
	}
	g.queue.Remove(exitingPos)
	delete(g.exits, exitingPos)
	g.states[exitingPos] = plasma.StateRemoved
	g.balances[challenger] += exit.Bond

	return ExitChallenged{Position: exitingPos, Challenger: challenger}, nil
}

// ProcessExits finalizes up to max exits whose challenge period has
// elapsed, in strict (ExitableAt, Position) order. It stops without error
// once the head is still inside its challenge period or the queue is
// empty, so no exit is ever paid before an earlier-priority one.
func (g *ExitGame) ProcessExits(max int, now uint64) ([]ExitFinalized, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []ExitFinalized
	for len(out) < max {
		head, ok := g.queue.PeekMin()
		if !ok || head.ExitableAt > now {
			break
		}
		if _, err := g.queue.PopMin(); err != nil {
			return out, err
		}
		exit := g.exits[head.Position]
		credit := exit.Amount + exit.Bond
		if err := g.db.FinalizePaidExit(head.Position, exit.Owner, credit); err != nil {
			// Memory must not run ahead of the store.
			_ = g.queue.Insert(head)
			return out, err
		}
		delete(g.exits, head.Position)
		g.states[head.Position] = plasma.StateFinalized
		g.balances[exit.Owner] += credit
		out = append(out, ExitFinalized{Position: head.Position, Owner: exit.Owner, Amount: exit.Amount})
	}
	return out, nil
}

func (g *ExitGame) stateOf(pos plasma.Position) plasma.ExitState {
	return g.states[pos]
}

func (g *ExitGame) CurrentBlock() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentBlock
}

func (g *ExitGame) BlockRoot(blk uint64) ([32]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	root, ok := g.roots[blk]
	return root, ok
}

func (g *ExitGame) PendingExit(pos plasma.Position) (plasma.Exit, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.exits[pos]
	return e, ok
}

func (g *ExitGame) StateOf(pos plasma.Position) plasma.ExitState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateOf(pos)
}

// Withdrawable reports the funds addr may claim from the root ledger:
// finalized exit payouts plus any forfeited bonds won by challenge.
func (g *ExitGame) Withdrawable(addr common.Address) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[addr]
}

func (g *ExitGame) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queue.Len()
}

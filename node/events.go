package node

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/kfichter/plasma-core/plasma"
)

// Events returned by the ledger-boundary operations.

type DepositCreated struct {
	Owner         common.Address
	Amount        uint64
	BlockPosition plasma.Position
}

type BlockCommitted struct {
	BlockNumber uint64
	Root        [32]byte
}

type ExitStarted struct {
	Owner    common.Address
	Position plasma.Position
	Amount   uint64
}

type ExitChallenged struct {
	Position   plasma.Position
	Challenger common.Address
}

type ExitFinalized struct {
	Position plasma.Position
	Owner    common.Address
	Amount   uint64
}

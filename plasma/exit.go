package plasma

import "github.com/ethereum/go-ethereum/common"

// ExitState tracks the lifecycle of an exit claim per UTXO position.
// Removed and Finalized are terminal; positions are never reused, so a
// terminal position can never re-enter Pending.
type ExitState uint8

const (
	StateNonExistent ExitState = iota
	StatePending
	StateRemoved
	StateFinalized
)

func (s ExitState) String() string {
	switch s {
	case StateNonExistent:
		return "nonexistent"
	case StatePending:
		return "pending"
	case StateRemoved:
		return "removed"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Exit is a pending withdrawal claim against one UTXO position. CreatedAt
// and ExitableAt are ledger timestamps, never local wall-clock readings.
type Exit struct {
	Owner      common.Address
	Amount     uint64
	Position   Position
	Bond       uint64
	CreatedAt  uint64
	ExitableAt uint64
}

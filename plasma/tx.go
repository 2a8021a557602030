package plasma

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Input references a prior output by its child-chain coordinates. A zero
// BlkNum marks an unused slot.
type Input struct {
	BlkNum   uint64
	TxIndex  uint64
	OutIndex uint64
}

// Output assigns an amount to an owner. An unused slot has the zero
// address and amount zero.
type Output struct {
	Owner  common.Address
	Amount uint64
}

// Transaction is the fixed two-input/two-output child-chain transaction.
// Immutable once parsed. The canonical hash is always computed over the
// encoded byte form, never the in-memory struct, so hash equality implies
// byte-identical encoding.
type Transaction struct {
	Inputs  [2]Input
	Outputs [2]Output
}

func (in Input) IsZero() bool {
	return in.BlkNum == 0 && in.TxIndex == 0 && in.OutIndex == 0
}

// Position returns the key under which the referenced output is looked up.
func (in Input) Position() (Position, error) {
	return NewPosition(in.BlkNum, in.TxIndex, in.OutIndex)
}

func (o Output) IsZero() bool {
	return o.Owner == (common.Address{}) && o.Amount == 0
}

// ParseTx decodes the canonical RLP form: a two-element list of two
// two-element lists. Wrong arity, non-canonical integers, oversized
// address fields and trailing bytes are all rejected.
func ParseTx(b []byte) (*Transaction, error) {
	var tx Transaction
	if err := rlp.DecodeBytes(b, &tx); err != nil {
		return nil, Errf(TX_ERR_MALFORMED, "%v", err)
	}
	return &tx, nil
}

// Bytes re-encodes the transaction into its canonical form. Parsing then
// re-encoding byte-identical input yields the identical bytes.
func (tx *Transaction) Bytes() []byte {
	out, err := rlp.EncodeToBytes(tx)
	if err != nil {
		// A fixed-shape struct of unsigned fields cannot fail to encode.
		panic(err)
	}
	return out
}

// Hash is the canonical transaction digest: keccak-256 over Bytes.
func (tx *Transaction) Hash() [32]byte {
	return keccak256(tx.Bytes())
}

// OutputAt returns the output at index if it exists and is in use.
func (tx *Transaction) OutputAt(index uint64) (Output, bool) {
	if index >= uint64(len(tx.Outputs)) {
		return Output{}, false
	}
	out := tx.Outputs[index]
	if out.IsZero() {
		return Output{}, false
	}
	return out, true
}

// SpendsPosition reports the index of the input referencing pos, if any.
// Unused slots and inputs with out-of-range coordinates never match.
func (tx *Transaction) SpendsPosition(pos Position) (int, bool) {
	for i, in := range tx.Inputs {
		if in.IsZero() {
			continue
		}
		p, err := in.Position()
		if err != nil {
			continue
		}
		if p == pos {
			return i, true
		}
	}
	return 0, false
}

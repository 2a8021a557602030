package plasma

import "github.com/ethereum/go-ethereum/common"

// TreeHeight is the fixed depth of per-block transaction trees, supporting
// up to 1024 transactions per child block.
const TreeHeight = 10

// BuildDeposit returns the canonical encoding of a deposit transaction:
// both inputs unused, output 0 holding the deposited funds, output 1
// empty. Every caller depositing the same (owner, amount) produces the
// same bytes, so later exits and challenges decode it identically.
func BuildDeposit(owner common.Address, amount uint64) []byte {
	tx := Transaction{Outputs: [2]Output{{Owner: owner, Amount: amount}}}
	return tx.Bytes()
}

// DepositRoot computes the root of a height-deep tree whose leaf 0 is the
// hash of the encoded deposit transaction and whose remaining leaves are
// the empty-subtree chain. A deposit can then be proven included in a
// conceptual single-transaction block without materializing the block.
func DepositRoot(encodedTx []byte, height int) [32]byte {
	root := keccak256(encodedTx)
	zero := zeroLeaf()
	for i := 0; i < height; i++ {
		root = keccak256(root[:], zero[:])
		zero = keccak256(zero[:], zero[:])
	}
	return root
}

// zeroLeaf is the base of the empty-subtree chain: the hash of 32 zero
// bytes. Level n+1 of the chain is keccak(level_n || level_n).
func zeroLeaf() [32]byte {
	var zeros [32]byte
	return keccak256(zeros[:])
}

package plasma

const (
	BlockOffset = 1_000_000_000
	TxOffset    = 10_000

	MaxTxIndex     = 9999
	MaxOutputIndex = 255

	// Largest block number whose packed contribution fits a uint64. The
	// remaining headroom above maxBlockNumber*BlockOffset exceeds the
	// largest possible (txIndex, outputIndex) contribution, so the checks
	// below are sufficient.
	maxBlockNumber = (1<<64 - 1) / BlockOffset
)

// Position packs (block number, tx index, output index) into one integer
// key, totally ordering every output ever created on the child chain.
type Position uint64

func NewPosition(blkNum, txIndex, outIndex uint64) (Position, error) {
	if txIndex > MaxTxIndex {
		return 0, Errf(POS_ERR_RANGE, "tx_index %d exceeds %d", txIndex, MaxTxIndex)
	}
	if outIndex > MaxOutputIndex {
		return 0, Errf(POS_ERR_RANGE, "output_index %d exceeds %d", outIndex, MaxOutputIndex)
	}
	if blkNum > maxBlockNumber {
		return 0, Errf(POS_ERR_OVERFLOW, "block_number %d overflows position", blkNum)
	}
	return Position(blkNum*BlockOffset + txIndex*TxOffset + outIndex), nil
}

func (p Position) BlockNumber() uint64 { return uint64(p) / BlockOffset }
func (p Position) TxIndex() uint64     { return uint64(p) % BlockOffset / TxOffset }
func (p Position) OutputIndex() uint64 { return uint64(p) % TxOffset }

// Decode splits the position back into its fields. It is the exact inverse
// of NewPosition and rejects keys whose sub-fields fall outside the ranges
// NewPosition enforces, so foreign integers cannot smuggle in out-of-range
// coordinates.
func (p Position) Decode() (blkNum, txIndex, outIndex uint64, err error) {
	blkNum = p.BlockNumber()
	txIndex = p.TxIndex()
	outIndex = p.OutputIndex()
	if txIndex > MaxTxIndex {
		return 0, 0, 0, Errf(POS_ERR_RANGE, "position %d decodes tx_index %d", uint64(p), txIndex)
	}
	if outIndex > MaxOutputIndex {
		return 0, 0, 0, Errf(POS_ERR_RANGE, "position %d decodes output_index %d", uint64(p), outIndex)
	}
	return blkNum, txIndex, outIndex, nil
}

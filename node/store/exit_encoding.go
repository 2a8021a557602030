package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kfichter/plasma-core/plasma"
)

const exitValueLen = common.AddressLength + 8 + 8 + 8 + 8

// Layout:
// owner 20 | amount u64le | bond u64le | created_at u64le | exitable_at u64le
// The position is the bucket key and is not repeated in the value.
func encodeExit(e plasma.Exit) []byte {
	out := make([]byte, exitValueLen)
	copy(out[0:20], e.Owner[:])
	binary.LittleEndian.PutUint64(out[20:28], e.Amount)
	binary.LittleEndian.PutUint64(out[28:36], e.Bond)
	binary.LittleEndian.PutUint64(out[36:44], e.CreatedAt)
	binary.LittleEndian.PutUint64(out[44:52], e.ExitableAt)
	return out
}

func decodeExit(pos plasma.Position, b []byte) (plasma.Exit, error) {
	if len(b) != exitValueLen {
		return plasma.Exit{}, fmt.Errorf("exit: expected %d bytes, got %d", exitValueLen, len(b))
	}
	var e plasma.Exit
	copy(e.Owner[:], b[0:20])
	e.Amount = binary.LittleEndian.Uint64(b[20:28])
	e.Bond = binary.LittleEndian.Uint64(b[28:36])
	e.CreatedAt = binary.LittleEndian.Uint64(b[36:44])
	e.ExitableAt = binary.LittleEndian.Uint64(b[44:52])
	e.Position = pos
	return e, nil
}

package plasma

import "golang.org/x/crypto/sha3"

func keccak256(chunks ...[]byte) [32]byte {
	d := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		_, _ = d.Write(c)
	}
	var out [32]byte
	d.Sum(out[:0])
	return out
}

package plasma

// CheckMembership verifies that leaf sits at index under root, given the
// sibling path for a tree of the given height. Malformed proof sizes and
// out-of-range indices verify false rather than erroring, so substituted
// or truncated proofs can never pass.
func CheckMembership(leaf [32]byte, index uint64, root [32]byte, proof []byte, height int) bool {
	if height <= 0 || height > 32 {
		return false
	}
	if len(proof) != height*32 {
		return false
	}
	if index >= uint64(1)<<uint(height) {
		return false
	}
	computed := leaf
	for off := 0; off < len(proof); off += 32 {
		var sibling [32]byte
		copy(sibling[:], proof[off:off+32])
		if index%2 == 0 {
			computed = keccak256(computed[:], sibling[:])
		} else {
			computed = keccak256(sibling[:], computed[:])
		}
		index /= 2
	}
	return computed == root
}

// FixedTree is a fixed-height merkle tree over pre-hashed leaves, padded
// with the empty-subtree chain. It is the prover-side counterpart of
// CheckMembership: operators build block roots and inclusion proofs with
// it, and DepositRoot equals the root of a FixedTree holding only the
// deposit transaction hash.
type FixedTree struct {
	height int
	levels [][][32]byte
}

func NewFixedTree(leaves [][32]byte, height int) (*FixedTree, error) {
	if height <= 0 || height > 32 {
		return nil, Errf(MERKLE_ERR_HEIGHT, "height %d out of range", height)
	}
	capacity := 1 << uint(height)
	if len(leaves) > capacity {
		return nil, Errf(MERKLE_ERR_CAPACITY, "%d leaves exceed capacity %d", len(leaves), capacity)
	}

	base := make([][32]byte, capacity)
	copy(base, leaves)
	zero := zeroLeaf()
	for i := len(leaves); i < capacity; i++ {
		base[i] = zero
	}

	levels := make([][][32]byte, height+1)
	levels[0] = base
	for lvl := 1; lvl <= height; lvl++ {
		prev := levels[lvl-1]
		cur := make([][32]byte, len(prev)/2)
		for i := range cur {
			cur[i] = keccak256(prev[2*i][:], prev[2*i+1][:])
		}
		levels[lvl] = cur
	}
	return &FixedTree{height: height, levels: levels}, nil
}

func (t *FixedTree) Root() [32]byte {
	return t.levels[t.height][0]
}

// Proof returns the concatenated sibling hashes for the leaf at index,
// bottom to top, sized height*32 bytes.
func (t *FixedTree) Proof(index uint64) ([]byte, error) {
	if index >= uint64(len(t.levels[0])) {
		return nil, Errf(MERKLE_ERR_INDEX, "leaf index %d out of range", index)
	}
	out := make([]byte, 0, t.height*32)
	for lvl := 0; lvl < t.height; lvl++ {
		sibling := t.levels[lvl][index^1]
		out = append(out, sibling[:]...)
		index /= 2
	}
	return out, nil
}

package crypto

import "github.com/Klingon-tech/klingnet-ledger/pkg/types"

// MerkleRoot folds a list of leaf hashes into a single root.
//
//   - 0 leaves: zero hash
//   - 1 leaf: the leaf itself
//   - otherwise: pairwise HashConcat, duplicating the last leaf of an odd
//     level, until one hash remains.
func MerkleRoot(leaves []types.Hash) types.Hash {
	switch len(leaves) {
	case 0:
		return types.Hash{}
	case 1:
		return leaves[0]
	}

	level := make([]types.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = HashConcat(level[i], level[i+1])
		}
		level = next
	}
	return level[0]
}

package plasma

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of one [R || S || V] signature.
const SignatureLength = 65

// ConfirmationHash derives the digest a participant signs to attest that
// the transaction hashing to txHash is included in a committed block.
func ConfirmationHash(txHash [32]byte) [32]byte {
	return keccak256(txHash[:])
}

// RecoverSigner returns the address that produced sig over digest. V may
// be 0/1 or 27/28. Malformed signatures yield the zero address and an
// error; callers treat a zero address as "no signer", never as a match.
func RecoverSigner(digest [32]byte, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, Errf(SIG_ERR_LENGTH, "signature is %d bytes, want %d", len(sig), SignatureLength)
	}
	norm := make([]byte, SignatureLength)
	copy(norm, sig)
	if norm[64] >= 27 {
		norm[64] -= 27
	}
	pub, err := crypto.SigToPub(digest[:], norm)
	if err != nil {
		return common.Address{}, Errf(SIG_ERR_RECOVER, "%v", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// ValidateSignatures checks that every spending signature and its paired
// confirmation signature recover to the same signer. A single mismatched
// or unrecoverable pair makes the whole call false. The lengths must be
// equal and a multiple of SignatureLength.
func ValidateSignatures(txHash [32]byte, sigs, confSigs []byte) (bool, error) {
	if len(sigs)%SignatureLength != 0 {
		return false, Errf(SIG_ERR_LENGTH, "signatures length %d not a multiple of %d", len(sigs), SignatureLength)
	}
	if len(sigs) != len(confSigs) {
		return false, Errf(SIG_ERR_LENGTH, "signatures %d bytes, confirmations %d bytes", len(sigs), len(confSigs))
	}
	confHash := ConfirmationHash(txHash)
	for off := 0; off < len(sigs); off += SignatureLength {
		signer, _ := RecoverSigner(txHash, sigs[off:off+SignatureLength])
		confirmer, _ := RecoverSigner(confHash, confSigs[off:off+SignatureLength])
		if signer == (common.Address{}) || signer != confirmer {
			return false, nil
		}
	}
	return true, nil
}

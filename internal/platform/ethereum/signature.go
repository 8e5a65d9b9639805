package ethereum

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"

	"wallet-verify-backend/internal/common/logger"
)

// VerifySignature reports whether signature is a valid EIP-191
// personal_sign signature over message by the claimed address. Address
// comparison is case-insensitive. Malformed input of any kind yields
// false; the cause is logged, never returned.
func VerifySignature(address, signature, message string) bool {
	ok, err := recoverAndCompare(address, signature, message)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("address", address).
			Msg("Signature verification failed")
		return false
	}
	return ok
}

func recoverAndCompare(address, signature, message string) (bool, error) {
	sig, err := decodeHex(signature)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != 65 {
		return false, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	// EIP-191 prefixed digest over the raw message text.
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	digest := keccak256([]byte(prefixed))

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return false, fmt.Errorf("invalid recovery id: %d", sig[64])
	}

	// btcec compact signatures lead with V (27 + recovery id).
	compact := make([]byte, 65)
	compact[0] = 27 + v
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pubKey, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return false, fmt.Errorf("recover public key: %w", err)
	}

	recovered := AddressFromPubKey(pubKey)
	return strings.EqualFold(recovered, address), nil
}

// AddressFromPubKey derives the 0x-prefixed Ethereum address for a
// secp256k1 public key.
func AddressFromPubKey(pubKey *btcec.PublicKey) string {
	// Keccak over the uncompressed point without the 0x04 marker;
	// the address is the last 20 bytes.
	uncompressed := pubKey.SerializeUncompressed()
	hash := keccak256(uncompressed[1:])
	return "0x" + hex.EncodeToString(hash[12:])
}

// NormalizeAddress lowercases an address and validates its shape,
// returning the canonical 0x-prefixed form used for comparisons.
func NormalizeAddress(address string) (string, error) {
	addr := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(address)), "0x")
	if len(addr) != 40 {
		return "", fmt.Errorf("ethereum address must be 40 hex characters")
	}
	if _, err := hex.DecodeString(addr); err != nil {
		return "", fmt.Errorf("invalid hex in address: %w", err)
	}
	return "0x" + addr, nil
}

// ChecksumAddress applies the EIP-55 mixed-case checksum. Used for
// display only; comparisons stay lowercase.
func ChecksumAddress(address string) string {
	addr := strings.TrimPrefix(strings.ToLower(address), "0x")
	hash := keccak256([]byte(addr))

	out := make([]byte, len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 && c >= 'a' && c <= 'f' {
			c -= 32
		}
		out[i] = c
	}
	return "0x" + string(out)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

package ethereum

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKeyHex = "4c0883a69102937d6231471b5dbb6204fe51296170827922b7a56c91b8b56d09"

// signMessage produces an EIP-191 personal_sign signature the way a
// wallet would, returning the signer address and the 0x-hex signature.
func signMessage(t *testing.T, privateKeyHex, message string) (string, string) {
	t.Helper()

	keyBytes, err := hex.DecodeString(privateKeyHex)
	require.NoError(t, err)
	privKey, _ := btcec.PrivKeyFromBytes(keyBytes)

	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	digest := keccak256([]byte(prefixed))

	compact := ecdsa.SignCompact(privKey, digest, false)
	require.Len(t, compact, 65)

	// Rearrange from btcec's V|R|S to Ethereum's R|S|V.
	sig := make([]byte, 65)
	copy(sig[0:32], compact[1:33])
	copy(sig[32:64], compact[33:65])
	sig[64] = compact[0]

	return AddressFromPubKey(privKey.PubKey()), "0x" + hex.EncodeToString(sig)
}

func TestVerifySignature(t *testing.T) {
	message := "Please sign this message to verify your wallet address: 0xabc"
	address, signature := signMessage(t, testPrivateKeyHex, message)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, VerifySignature(address, signature, message))
	})

	t.Run("case-insensitive address match", func(t *testing.T) {
		assert.True(t, VerifySignature("0x"+strings.ToUpper(strings.TrimPrefix(address, "0x")), signature, message))
		assert.True(t, VerifySignature(strings.ToLower(address), signature, message))
	})

	t.Run("different claimed address", func(t *testing.T) {
		other, _ := signMessage(t, strings.Repeat("a", 64), message)
		assert.False(t, VerifySignature(other, signature, message))
	})

	t.Run("different message", func(t *testing.T) {
		assert.False(t, VerifySignature(address, signature, message+"tampered"))
	})

	t.Run("mutated signature byte", func(t *testing.T) {
		raw, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
		require.NoError(t, err)
		raw[10] ^= 0xff
		assert.False(t, VerifySignature(address, "0x"+hex.EncodeToString(raw), message))
	})

	t.Run("truncated signature", func(t *testing.T) {
		assert.False(t, VerifySignature(address, "0xdeadbeef", message))
	})

	t.Run("non-hex signature", func(t *testing.T) {
		assert.False(t, VerifySignature(address, "0xnot-hex-at-all", message))
	})

	t.Run("invalid recovery id", func(t *testing.T) {
		sig := make([]byte, 65)
		sig[64] = 29
		assert.False(t, VerifySignature(address, "0x"+hex.EncodeToString(sig), message))
	})

	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, VerifySignature(address, "", message))
	})
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
		wantErr bool
	}{
		{name: "lowercase", address: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "mixed case", address: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "uppercase no prefix", address: "D8DA6BF26964AF9D7EED9E03E53415D37AA96045", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "surrounding whitespace", address: "  0xd8da6bf26964af9d7eed9e03e53415d37aa96045 ", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "too short", address: "0xd8da6bf269", wantErr: true},
		{name: "too long", address: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045ab", wantErr: true},
		{name: "invalid hex", address: "0xg8da6bf26964af9d7eed9e03e53415d37aa96045", wantErr: true},
		{name: "empty", address: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	assert.Equal(t,
		"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
		ChecksumAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045"))
}

package identity_test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/retrotoken/internal/adapters/identity"
	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// signCredential firma el mensaje como lo haría personal_sign y construye la
// credencial "address.firmaHex" con V en 27/28.
func signCredential(t *testing.T, message string) (address, credential string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address = crypto.PubkeyToAddress(key.PublicKey).Hex()

	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	sig, err := crypto.Sign(crypto.Keccak256([]byte(prefixed)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	return address, address + ".0x" + hex.EncodeToString(sig)
}

func TestWalletResolver_ValidSignature(t *testing.T) {
	resolver := identity.NewWalletResolver("")
	address, credential := signCredential(t, identity.SignMessage)

	userID, err := resolver.ResolveUserID(requestWithAuth("Bearer " + credential))
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(address), userID)
}

func TestWalletResolver_WrongMessageRejected(t *testing.T) {
	resolver := identity.NewWalletResolver("")
	_, credential := signCredential(t, "some other message")

	_, err := resolver.ResolveUserID(requestWithAuth("Bearer " + credential))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestWalletResolver_AddressMismatchRejected(t *testing.T) {
	resolver := identity.NewWalletResolver("")
	_, credential := signCredential(t, identity.SignMessage)

	// Firma válida pero de otra wallet: la dirección declarada no coincide
	otherAddress := "0x000000000000000000000000000000000000dEaD"
	_, signature, _ := strings.Cut(credential, ".")
	_, err := resolver.ResolveUserID(requestWithAuth("Bearer " + otherAddress + "." + signature))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// Una dirección sin firma nunca prueba identidad.
func TestWalletResolver_BareAddressRejected(t *testing.T) {
	resolver := identity.NewWalletResolver("")

	_, err := resolver.ResolveUserID(requestWithAuth("Bearer 0x000000000000000000000000000000000000dEaD"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestWalletResolver_GarbageCredentialRejected(t *testing.T) {
	resolver := identity.NewWalletResolver("")

	for _, cred := range []string{
		"not-an-address.0xdeadbeef",
		"0x000000000000000000000000000000000000dEaD.nothex",
		"0x000000000000000000000000000000000000dEaD.0xabcd", // firma corta
	} {
		_, err := resolver.ResolveUserID(requestWithAuth("Bearer " + cred))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, "credential %q", cred)
	}
}

func TestWalletResolver_UserIDIsLowercased(t *testing.T) {
	resolver := identity.NewWalletResolver("")
	address, credential := signCredential(t, identity.SignMessage)

	userID, err := resolver.ResolveUserID(requestWithAuth("Bearer " + credential))
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(userID), userID)
	assert.Equal(t, strings.ToLower(address), userID)
}

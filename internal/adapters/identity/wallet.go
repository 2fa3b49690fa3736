package identity

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// SignMessage es el mensaje fijo que la wallet firma una vez al conectar.
// Cambiarlo invalida todas las credenciales emitidas.
const SignMessage = "Sign this message to verify your ownership of this wallet and manage your watchlist on RetroToken."

// WalletResolver implementa ports.IdentityResolver con firmas EIP-191
// (personal_sign) sobre SignMessage. La credencial es "address.firmaHex":
// la dirección recuperada de la firma tiene que coincidir con la declarada,
// y el userId resuelto es la dirección en minúsculas.
type WalletResolver struct {
	message string
}

// NewWalletResolver crea el resolver. Si message está vacío usa SignMessage.
func NewWalletResolver(message string) *WalletResolver {
	if message == "" {
		message = SignMessage
	}
	return &WalletResolver{message: message}
}

// ResolveUserID verifica la firma de la credencial y devuelve la dirección
// en minúsculas como userId.
func (w *WalletResolver) ResolveUserID(r *http.Request) (string, error) {
	credential, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	address, signature, ok := strings.Cut(credential, ".")
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	if !common.IsHexAddress(address) {
		return "", domain.ErrUnauthenticated
	}

	recovered, err := w.recoverAddress(signature)
	if err != nil {
		return "", domain.ErrUnauthenticated
	}
	if !strings.EqualFold(recovered.Hex(), address) {
		return "", domain.ErrUnauthenticated
	}

	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// recoverAddress recupera la dirección firmante de la firma hex sobre el
// digest EIP-191 del mensaje fijo.
func (w *WalletResolver) recoverAddress(signature string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("identity.recoverAddress: decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("identity.recoverAddress: signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// personal_sign emite V en 27/28; SigToPub espera 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	digest := personalSignDigest(w.message)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("identity.recoverAddress: recover pubkey: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// personalSignDigest calcula el hash EIP-191 del mensaje, con el prefijo
// "\x19Ethereum Signed Message".
func personalSignDigest(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

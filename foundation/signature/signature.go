// Package signature provides helper functions for proving wallet ownership
// with Ethereum personal message signatures (EIP-191).
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of errors returned when checking a signature.
var (
	ErrMalformed = errors.New("malformed signature")
	ErrMismatch  = errors.New("signature does not match wallet address")
)

// Wallets add 27 to the recovery id when producing personal signatures.
// Ethereum and Bitcoin both use this value.
const recoveryOffset = 27

// =============================================================================

// SignMessage signs the message the same way a browser wallet does for
// personal_sign and returns the 65 byte [R|S|V] signature hex encoded.
func SignMessage(message string, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), privateKey)
	if err != nil {
		return "", err
	}

	sig[crypto.RecoveryIDOffset] += recoveryOffset

	return hexutil.Encode(sig), nil
}

// RecoverAddress extracts the address of the account that signed the message.
func RecoverAddress(message string, sigHex string) (string, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformed, crypto.SignatureLength, len(sig))
	}

	// Some wallets produce a raw recovery id of 0 or 1, most produce 27 or 28.
	if sig[crypto.RecoveryIDOffset] >= recoveryOffset {
		sig[crypto.RecoveryIDOffset] -= recoveryOffset
	}

	publicKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

// Verify checks the message was signed by the specified wallet address.
// Addresses are compared without regard to checksum casing.
func Verify(message string, sigHex string, address string) error {
	recovered, err := RecoverAddress(message, sigHex)
	if err != nil {
		return err
	}

	if !strings.EqualFold(recovered, address) {
		return ErrMismatch
	}

	return nil
}

// PublicKeyToAddress returns the checksummed wallet address for the key.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(pk).Hex()
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/askchain/askchain/foundation/keystore"
	"github.com/askchain/askchain/foundation/signature"
)

// GenKey creates a new wallet key and stores it at the path. The key
// extension is added when missing.
func GenKey(path string) error {
	if path == "" {
		return errors.New("genkey requires a path, e.g. zblock/accounts/alice")
	}

	if !strings.HasSuffix(path, keystore.KeyExtension) {
		path += keystore.KeyExtension
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file %s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		return fmt.Errorf("saving key: %w", err)
	}

	fmt.Printf("wallet %s saved to %s\n", signature.PublicKeyToAddress(privateKey.PublicKey), path)
	return nil
}

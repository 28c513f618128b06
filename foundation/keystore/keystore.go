// Package keystore reads a folder of .ecdsa key files and provides lookup
// of wallet keys by name and names by wallet address.
package keystore

import (
	"crypto/ecdsa"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// KeyExtension is the file extension of stored private keys.
const KeyExtension = ".ecdsa"

// Account represents a named wallet held in the key folder.
type Account struct {
	Name    string
	Address string
	Key     *ecdsa.PrivateKey
}

// KeyStore maintains the set of accounts found in a folder.
type KeyStore struct {
	byName    map[string]Account
	byAddress map[string]string
}

// New constructs a KeyStore with the accounts found under root. A missing
// folder yields an empty key store.
func New(root string) (*KeyStore, error) {
	ks := KeyStore{
		byName:    make(map[string]Account),
		byAddress: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil && fileName == root {
				return fs.SkipAll
			}
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != KeyExtension {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		name := strings.TrimSuffix(filepath.Base(fileName), KeyExtension)
		address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()

		ks.byName[name] = Account{
			Name:    name,
			Address: address,
			Key:     privateKey,
		}
		ks.byAddress[strings.ToLower(address)] = name

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ks, nil
}

// Account returns the named account.
func (ks *KeyStore) Account(name string) (Account, error) {
	name = strings.TrimSuffix(name, KeyExtension)

	acct, exists := ks.byName[name]
	if !exists {
		return Account{}, fmt.Errorf("account %q not found", name)
	}

	return acct, nil
}

// Lookup returns the name for the specified wallet address, or the address
// itself when no key file exists for it.
func (ks *KeyStore) Lookup(address string) string {
	name, exists := ks.byAddress[strings.ToLower(address)]
	if !exists {
		return address
	}
	return name
}

// Accounts returns the accounts ordered by name.
func (ks *KeyStore) Accounts() []Account {
	accts := make([]Account, 0, len(ks.byName))
	for _, acct := range ks.byName {
		accts = append(accts, acct)
	}

	sort.Slice(accts, func(i, j int) bool {
		return accts[i].Name < accts[j].Name
	})

	return accts
}

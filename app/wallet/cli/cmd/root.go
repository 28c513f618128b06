// Package cmd contains the askchain wallet app.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askchain/askchain/foundation/keystore"
)

var (
	accountName string
	accountPath string
	url         string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the askchain api.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Sign in to askchain and work with questions from a local key",
}

// Execute runs the wallet app.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, keystore.KeyExtension) {
		name += keystore.KeyExtension
	}

	return filepath.Join(accountPath, name)
}

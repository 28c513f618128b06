package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/askchain/askchain/foundation/keystore"
	"github.com/askchain/askchain/foundation/signature"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the wallet address of the selected key",
	Run:   accountRun,
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List every key in the key folder",
	Run:   accountsRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(accountsCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(signature.PublicKeyToAddress(privateKey.PublicKey))
}

func accountsRun(cmd *cobra.Command, args []string) {
	ks, err := keystore.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, acct := range ks.Accounts() {
		fmt.Printf("%-20s %s\n", acct.Name, acct.Address)
	}
}

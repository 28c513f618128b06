package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/askchain/askchain/foundation/signature"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Prove ownership of the wallet and sign in",
	Run:   connectRun,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func connectRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	message := fmt.Sprintf("Sign in to askchain as %s at %d", w.address, time.Now().Unix())

	sig, err := signature.SignMessage(message, w.key)
	if err != nil {
		log.Fatal(err)
	}

	body := struct {
		WalletAddress string `json:"walletAddress"`
		Message       string `json:"message"`
		Signature     string `json:"signature"`
	}{
		WalletAddress: w.address,
		Message:       message,
		Signature:     sig,
	}

	if err := send(os.Stdout, http.MethodPost, url, "/auth", body); err != nil {
		log.Fatal(err)
	}
}

package cmd

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askchain/askchain/business/core/question"
)

var (
	subject    string
	reward     string
	questionID string
	txHash     string
)

var askCmd = &cobra.Command{
	Use:   "ask [question text]",
	Short: "Post a question and escrow the reward",
	Args:  cobra.MinimumNArgs(1),
	Run:   askRun,
}

var awardCmd = &cobra.Command{
	Use:   "award",
	Short: "Mark one of your questions as rewarded",
	Run:   awardRun,
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questions asked by the wallet",
	Run:   questionsRun,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&subject, "subject", "s", question.SubjectOther, "Subject of the question: "+strings.Join(question.Subjects, ", ")+".")
	askCmd.Flags().StringVarP(&reward, "reward", "r", "0.1", "ASK tokens offered as reward.")

	rootCmd.AddCommand(awardCmd)
	awardCmd.Flags().StringVarP(&questionID, "question", "q", "", "Id of the question.")
	awardCmd.Flags().StringVarP(&txHash, "tx", "t", "", "Hash of the on-chain reward transfer.")
	awardCmd.MarkFlagRequired("question")

	rootCmd.AddCommand(questionsCmd)
}

func askRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	body := struct {
		WalletAddress string `json:"walletAddress"`
		Content       string `json:"content"`
		Subject       string `json:"subject"`
		Reward        string `json:"reward"`
	}{
		WalletAddress: w.address,
		Content:       strings.Join(args, " "),
		Subject:       strings.ToUpper(subject),
		Reward:        reward,
	}

	if err := send(os.Stdout, http.MethodPost, url, "/questions", body); err != nil {
		log.Fatal(err)
	}
}

func awardRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	rewarded := true
	body := struct {
		WalletAddress string `json:"walletAddress"`
		Rewarded      *bool  `json:"rewarded"`
		TxHash        string `json:"txHash,omitempty"`
	}{
		WalletAddress: w.address,
		Rewarded:      &rewarded,
		TxHash:        txHash,
	}

	if err := send(os.Stdout, http.MethodPut, url, "/questions/"+questionID, body); err != nil {
		log.Fatal(err)
	}
}

func questionsRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	if err := send(os.Stdout, http.MethodGet, url, "/questions?walletAddress="+w.address, nil); err != nil {
		log.Fatal(err)
	}
}

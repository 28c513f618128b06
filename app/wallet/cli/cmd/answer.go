package cmd

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var answerID string

var answerCmd = &cobra.Command{
	Use:   "answer [answer text]",
	Short: "Answer a question",
	Args:  cobra.MinimumNArgs(1),
	Run:   answerRun,
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Upvote an answer",
	Run:   voteRun,
}

var upvotesCmd = &cobra.Command{
	Use:   "upvotes",
	Short: "Show the balance and the upvotes your answers received",
	Run:   upvotesRun,
}

func init() {
	rootCmd.AddCommand(answerCmd)
	answerCmd.Flags().StringVarP(&questionID, "question", "q", "", "Id of the question.")
	answerCmd.MarkFlagRequired("question")

	rootCmd.AddCommand(voteCmd)
	voteCmd.Flags().StringVarP(&answerID, "answer", "n", "", "Id of the answer.")
	voteCmd.MarkFlagRequired("answer")

	rootCmd.AddCommand(upvotesCmd)
}

func answerRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	body := struct {
		WalletAddress string `json:"walletAddress"`
		QuestionID    string `json:"questionId"`
		Content       string `json:"content"`
	}{
		WalletAddress: w.address,
		QuestionID:    questionID,
		Content:       strings.Join(args, " "),
	}

	if err := send(os.Stdout, http.MethodPost, url, "/answers", body); err != nil {
		log.Fatal(err)
	}
}

func voteRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	upvote := true
	body := struct {
		AnswerID      string `json:"answerId"`
		WalletAddress string `json:"walletAddress"`
		IsUpvote      *bool  `json:"isUpvote"`
	}{
		AnswerID:      answerID,
		WalletAddress: w.address,
		IsUpvote:      &upvote,
	}

	if err := send(os.Stdout, http.MethodPost, url, "/votes", body); err != nil {
		log.Fatal(err)
	}
}

func upvotesRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	if err := send(os.Stdout, http.MethodGet, url, "/users?walletAddress="+w.address, nil); err != nil {
		log.Fatal(err)
	}
}

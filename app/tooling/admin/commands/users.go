package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/core/user/stores/userdb"
	"github.com/askchain/askchain/business/sys/database"
)

// Users prints the known users and their balances. With a wallet only that
// user is printed.
func Users(log *zap.SugaredLogger, cfg database.Config, timeout time.Duration, wallet string) error {
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	core := user.NewCore(log, userdb.NewStore(log, db))

	var users []user.User
	switch wallet {
	case "":
		users, err = core.Query(ctx)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}

	default:
		usr, err := core.QueryByWallet(ctx, wallet)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		users = append(users, usr)
	}

	return printUsers(users)
}

func printUsers(users []user.User) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WALLET\tASK\tLAST LOGIN\tCREATED")
	for _, usr := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", usr.WalletAddress, usr.AskTokens, usr.LastLogin.Format(time.RFC3339), usr.DateCreated.Format(time.RFC3339))
	}
	return w.Flush()
}

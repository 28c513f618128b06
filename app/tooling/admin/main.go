// This program performs administrative tasks for the askchain service.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/askchain/askchain/app/tooling/admin/commands"
	"github.com/askchain/askchain/business/sys/database"
	"github.com/askchain/askchain/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

type config struct {
	conf.Version
	Args conf.Args
	DB   struct {
		User         string        `conf:"default:postgres"`
		Password     string        `conf:"default:postgres,mask"`
		Host         string        `conf:"default:localhost:5432"`
		Name         string        `conf:"default:askchain"`
		MaxIdleConns int           `conf:"default:2"`
		MaxOpenConns int           `conf:"default:2"`
		DisableTLS   bool          `conf:"default:true"`
		Timeout      time.Duration `conf:"default:30s"`
	}
}

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "askchain administration",
		},
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	const prefix = "ASKCHAIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	return processCommands(cfg.Args, log, cfg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, log *zap.SugaredLogger, cfg config) error {
	dbConfig := database.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	}

	switch args.Num(0) {
	case "migrate":
		if err := commands.Migrate(dbConfig, cfg.DB.Timeout); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

	case "users":
		if err := commands.Users(log, dbConfig, cfg.DB.Timeout, args.Num(1)); err != nil {
			return fmt.Errorf("getting users: %w", err)
		}

	case "genkey":
		if err := commands.GenKey(args.Num(1)); err != nil {
			return fmt.Errorf("key generation: %w", err)
		}

	default:
		fmt.Println("migrate:  create the schema in the database")
		fmt.Println("users:    list users and balances, optionally for one wallet")
		fmt.Println("genkey:   generate a new wallet key file")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}

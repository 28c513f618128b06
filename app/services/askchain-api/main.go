package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/askchain/askchain/app/services/askchain-api/handlers"
	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/answer/stores/answerdb"
	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/content/stores/contentcache"
	"github.com/askchain/askchain/business/core/content/stores/pinatastore"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/question/stores/questiondb"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/core/user/stores/userdb"
	"github.com/askchain/askchain/business/core/vote"
	"github.com/askchain/askchain/business/core/vote/stores/votedb"
	"github.com/askchain/askchain/business/sys/database"
	"github.com/askchain/askchain/business/sys/metrics"
	"github.com/askchain/askchain/foundation/events"
	"github.com/askchain/askchain/foundation/ledger"
	"github.com/askchain/askchain/foundation/logger"
	"github.com/askchain/askchain/foundation/pinata"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ASKCHAIN-API")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:30s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			APIHost         string        `conf:"default:0.0.0.0:3000"`
			DebugHost       string        `conf:"default:0.0.0.0:4000"`
		}
		DB struct {
			User         string `conf:"default:postgres"`
			Password     string `conf:"default:postgres,mask"`
			Host         string `conf:"default:localhost:5432"`
			Name         string `conf:"default:askchain"`
			MaxIdleConns int    `conf:"default:2"`
			MaxOpenConns int    `conf:"default:10"`
			DisableTLS   bool   `conf:"default:true"`
			Migrate      bool   `conf:"default:false"`
		}
		Content struct {
			Timeout      time.Duration `conf:"default:15s"`
			RetryBackoff time.Duration `conf:"default:500ms"`
			Concurrency  int           `conf:"default:8"`
		}
		Pinata struct {
			APIHost   string `conf:"default:https://api.pinata.cloud"`
			Gateway   string `conf:"default:https://gateway.pinata.cloud/ipfs"`
			JWT       string `conf:"mask"`
			APIKey    string `conf:"mask"`
			APISecret string `conf:"mask"`
		}
		Redis struct {
			Addr     string        `conf:"help:leave empty to disable the content cache"`
			Password string        `conf:"mask"`
			DB       int           `conf:"default:0"`
			TTL      time.Duration `conf:"default:24h"`
		}
		Ledger struct {
			RPCURL         string        `conf:"help:leave empty to accept rewards without on-chain confirmation"`
			RewardContract string        `conf:"help:address the reward transfers must target"`
			Timeout        time.Duration `conf:"default:10s"`
		}
		CORS struct {
			Origin string `conf:"default:*"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "askchain question and answer service",
		},
	}

	// A .env file is optional and only fills in what the environment lacks.
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

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Metrics Support

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mtr := metrics.New(reg, "api")

	// =========================================================================
	// Database Support

	log.Infow("startup", "status", "initializing database support", "host", cfg.DB.Host)

	db, err := database.Open(database.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support", "host", cfg.DB.Host)
		db.Close()
	}()

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return fmt.Errorf("status check database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		log.Infow("startup", "status", "schema migrated")
	}

	// =========================================================================
	// Content Store Support

	pnt, err := pinata.New(pinata.Config{
		APIHost:   cfg.Pinata.APIHost,
		Gateway:   cfg.Pinata.Gateway,
		JWT:       cfg.Pinata.JWT,
		APIKey:    cfg.Pinata.APIKey,
		APISecret: cfg.Pinata.APISecret,
	}, &http.Client{})
	if err != nil {
		return fmt.Errorf("constructing pinata client: %w", err)
	}

	var contentStore content.Storer = pinatastore.NewStore(pnt)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Infow("startup", "status", "redis unreachable, cache faults will be bypassed", "addr", cfg.Redis.Addr, "ERROR", err)
		}

		contentStore = contentcache.NewStore(log, contentStore, rdb, cfg.Redis.TTL)
		log.Infow("startup", "status", "content cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	// =========================================================================
	// Ledger Support

	var confirmer question.Confirmer
	if cfg.Ledger.RPCURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.Timeout)
		defer cancel()

		ldg, err := ledger.New(ctx, ledger.Config{
			RPCURL:         cfg.Ledger.RPCURL,
			RewardContract: cfg.Ledger.RewardContract,
			Timeout:        cfg.Ledger.Timeout,
		})
		if err != nil {
			return fmt.Errorf("connecting to ledger: %w", err)
		}
		defer ldg.Close()

		confirmer = ldg
		log.Infow("startup", "status", "reward confirmation enabled", "rpc", cfg.Ledger.RPCURL)
	}

	// =========================================================================
	// Core Support

	// The events are published to the websocket feed and logged.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(events.NewEvent(s, time.Now().UTC()))
	}

	contentCore := content.NewCore(log, contentStore, mtr, content.Config{
		Timeout:      cfg.Content.Timeout,
		RetryBackoff: cfg.Content.RetryBackoff,
		Concurrency:  cfg.Content.Concurrency,
	})
	userCore := user.NewCore(log, userdb.NewStore(log, db))
	answerCore := answer.NewCore(log, answerdb.NewStore(log, db), userCore, contentCore, ev)
	questionCore := question.NewCore(log, questiondb.NewStore(log, db), userCore, answerCore, contentCore, confirmer, ev)
	voteCore := vote.NewCore(log, votedb.NewStore(log, db), userCore, answerCore, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, db, mtr, reg)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing API support")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.APIMuxConfig{
		Shutdown:   shutdown,
		Log:        log,
		Metrics:    mtr,
		Evts:       evts,
		User:       userCore,
		Question:   questionCore,
		Answer:     answerCore,
		Vote:       voteCore,
		CORSOrigin: cfg.CORS.Origin,
	})

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

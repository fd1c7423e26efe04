package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-catalog/api"
	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuebookcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/issuespecificcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/returnbookcopy"
	"github.com/AntonStoeckl/library-catalog/features/query/bookavailability"
	"github.com/AntonStoeckl/library-catalog/features/query/borrowhistory"
	"github.com/AntonStoeckl/library-catalog/shared/core"
	"github.com/AntonStoeckl/library-catalog/shared/shell/config"
	"github.com/AntonStoeckl/library-catalog/userservice"
)

const (
	logMsgServing        = "catalog-service: listening"
	logMsgShuttingDown   = "catalog-service: shutting down"
	logMsgShutdownFailed = "catalog-service: shutdown failed"
	logAttrAddr          = "addr"
	logAttrError         = "error"
)

var flagMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until SIGINT or SIGTERM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&flagMigrate, "migrate", false, "Apply the schema before serving")
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireDSN(); err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	obs, err := newObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := obs.shutdown(context.Background()); shutdownErr != nil {
			logger.Error(logMsgShutdownFailed, logAttrError, shutdownErr.Error())
		}
	}()

	store, closeDB, err := config.OpenStore(ctx, cfg.Postgres, obs.storeOptions()...)
	if err != nil {
		return err
	}
	defer closeDB()

	if flagMigrate {
		if migrateErr := store.Migrate(ctx); migrateErr != nil {
			return migrateErr
		}
	}

	deps, err := buildDependencies(store, cfg, obs)
	if err != nil {
		return err
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(
		deps,
		api.WithContextualLogger(obs.contextualLogger),
		api.WithExposeErrorDetails(cfg.HTTP.ExposeErrorDetails),
		api.WithCORSAllowedOrigin(cfg.HTTP.CORSAllowedOrigin),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.Info(logMsgServing, logAttrAddr, cfg.HTTP.Addr)
		fmt.Println(color.GreenString("✓"), "catalog-service listening on", color.CyanString(cfg.HTTP.Addr))

		if listenErr := server.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}

		close(serveErr)
	}()

	select {
	case listenErr := <-serveErr:
		return listenErr
	case <-ctx.Done():
	}

	logger.Info(logMsgShuttingDown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// buildDependencies creates the workflow handlers, each wrapped for observability.
func buildDependencies(store catalog.Store, cfg *config.Config, obs *observability) (api.Dependencies, error) {
	policy := core.LoanPolicy{DefaultDays: cfg.Borrow.DefaultDays}

	issueBookCopy, err := observeCommand[issuebookcopy.Command, issuebookcopy.Result](issuebookcopy.NewCommandHandler(
		store,
		issuebookcopy.WithLoanPolicy(policy),
		issuebookcopy.WithRetryOptions(obs.retryOptions(cfg.Borrow, issuebookcopy.Command{})...),
	), obs)
	if err != nil {
		return api.Dependencies{}, err
	}

	issueSpecificCopy, err := observeCommand[issuespecificcopy.Command, issuespecificcopy.Result](issuespecificcopy.NewCommandHandler(
		store,
		issuespecificcopy.WithLoanPolicy(policy),
		issuespecificcopy.WithRetryOptions(obs.retryOptions(cfg.Borrow, issuespecificcopy.Command{})...),
	), obs)
	if err != nil {
		return api.Dependencies{}, err
	}

	returnBookCopy, err := observeCommand[returnbookcopy.Command, returnbookcopy.Result](returnbookcopy.NewCommandHandler(
		store,
		returnbookcopy.WithRetryOptions(obs.retryOptions(cfg.Borrow, returnbookcopy.Command{})...),
	), obs)
	if err != nil {
		return api.Dependencies{}, err
	}

	borrowHistory, err := observeQuery[borrowhistory.Query, borrowhistory.BorrowHistory](borrowhistory.NewQueryHandler(store), obs)
	if err != nil {
		return api.Dependencies{}, err
	}

	bookAvailability, err := observeQuery[bookavailability.Query, bookavailability.Availability](bookavailability.NewQueryHandler(store), obs)
	if err != nil {
		return api.Dependencies{}, err
	}

	users, err := userservice.NewClient(
		cfg.UserService.BaseURL,
		userservice.WithTimeout(cfg.UserService.Timeout),
		userservice.WithContextualLogger(obs.clientLogger),
	)
	if err != nil {
		return api.Dependencies{}, err
	}

	return api.Dependencies{
		Store:             store,
		IssueBookCopy:     issueBookCopy,
		IssueSpecificCopy: issueSpecificCopy,
		ReturnBookCopy:    returnBookCopy,
		BorrowHistory:     borrowHistory,
		BookAvailability:  bookAvailability,
		Users:             users,
	}, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/securepass/securepass/api"
	"github.com/securepass/securepass/clipboard"
	"github.com/securepass/securepass/crypto"
	bboltstorage "github.com/securepass/securepass/storage/bbolt"
)

var (
	port            int
	dataDir         string
	passphrase      string
	saltValue       string
	idleTimeout     time.Duration
	enableClipboard bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the local vault server",
	Long: `Serves the vault REST API on the loopback interface. The vault key is
derived from the configured passphrase and salt; with neither flag set the
static defaults are used, which protect against casual inspection only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		blobs, err := bboltstorage.NewStoreFromFile(filepath.Join(dataDir, "vault.db"), nil)
		if err != nil {
			return fmt.Errorf("opening vault storage: %w", err)
		}
		defer blobs.Close()

		var keyOpts []crypto.KeyManagerOption
		if passphrase != "" {
			keyOpts = append(keyOpts, crypto.WithPassphrase(passphrase))
		}
		if saltValue != "" {
			keyOpts = append(keyOpts, crypto.WithSalt([]byte(saltValue)))
		}
		keys := crypto.NewKeyManager(keyOpts...)

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		apiOpts := []api.Option{
			api.WithLogger(logger),
			api.WithIdleTimeout(idleTimeout),
		}
		if enableClipboard {
			apiOpts = append(apiOpts, api.WithClipboard(clipboard.NewChannel()))
		}
		a := api.New(blobs, keys, apiOpts...)
		defer a.Close()

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		// Loopback only: the vault serves a local UI, never the network.
		server := &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on 127.0.0.1:%d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8787, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&passphrase, "passphrase", "", "Vault key passphrase (default: static built-in material)")
	serverCmd.Flags().StringVar(&saltValue, "salt", "", "Vault key derivation salt (default: static built-in material)")
	serverCmd.Flags().DurationVar(&idleTimeout, "idle-timeout", 10*time.Minute, "Drop the session after this idle period (0 disables)")
	serverCmd.Flags().BoolVar(&enableClipboard, "clipboard", false, "Enable the clipboard copy endpoint")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-storefront/pkg/logger"
	"katydid-storefront/pkg/mockapi"
)

var (
	serveAddr   string
	serveSecret string
	serveUsers  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the in-memory mock backend",
	Example: `  storefront serve --addr :8080 --user ana@example.com:secret:user --user root@example.com:secret:admin
  open http://localhost:8080/swagger/index.html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logger.New(cfg.LoggerOptions())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if !cfg.Log.Development {
			gin.SetMode(gin.ReleaseMode)
		}
		backend := mockapi.New(
			mockapi.WithProducts(mockapi.DefaultProducts()...),
			mockapi.WithSecret(serveSecret),
			mockapi.WithLogger(log.Named("mockapi")))
		for _, u := range serveUsers {
			parts := strings.SplitN(u, ":", 3)
			if len(parts) < 2 {
				return fmt.Errorf("invalid --user %q, want email:password[:role]", u)
			}
			role := "user"
			if len(parts) == 3 && parts[2] != "" {
				role = parts[2]
			}
			if err := backend.AddUser(parts[0], parts[1], role); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           backend.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("mock backend listening", zap.String("addr", serveAddr), zap.Int("users", len(serveUsers)))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveSecret, "secret", "", "token signing secret")
	serveCmd.Flags().StringArrayVar(&serveUsers, "user", nil, "email:password[:role], repeatable")
	rootCmd.AddCommand(serveCmd)
}

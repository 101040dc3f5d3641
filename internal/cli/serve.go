package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/recorder/internal/repository"
	"github.com/xiaot623/gogo/recorder/internal/service"
	transport "github.com/xiaot623/gogo/recorder/internal/transport/http"
	"github.com/xiaot623/gogo/recorder/internal/transport/rpc"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				cfg.Server.Port = port
			}

			db, err := repository.NewSQLiteStore(cfg.Database.Driver, cfg.Database.DSN(), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			svc := service.New(db, log)
			srv := transport.NewServer(svc, log)

			var rpcSrv *rpc.Server
			if cfg.Server.RPCPort != 0 {
				rpcSrv, err = rpc.NewServer(svc, log)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				addr := fmt.Sprintf(":%d", cfg.Server.Port)
				log.Info().Str("addr", addr).Msg("server listening")
				if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			if rpcSrv != nil {
				g.Go(func() error {
					return rpcSrv.Start(fmt.Sprintf(":%d", cfg.Server.RPCPort))
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					return rpcSrv.Shutdown(shutdownCtx)
				})
			}
			g.Go(func() error {
				<-gctx.Done()
				log.Info().Msg("shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info().Msg("recorder stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")
	return cmd
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/config"
	"github.com/danielpatrickdp/oscars-th/internal/rpc"
	"github.com/danielpatrickdp/oscars-th/internal/store"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	addr := flag.String("addr", cfg.Addr, "listen address")
	dbPath := flag.String("db", cfg.DBPath, "record calls and runs in this SQLite file")
	flag.Parse()

	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(*addr, *dbPath, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(addr, dbPath string, cfg config.Config, logger *slog.Logger) error {
	facade := th.New(th.WithLogger(logger), th.WithDefaults(cfg.Spectrum))
	opts := []rpc.ServerOption{rpc.WithServerLogger(logger)}

	if dbPath != "" {
		s, err := store.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		opts = append(opts, rpc.WithRecorder(s))
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	gs := grpc.NewServer()
	rpc.Register(gs, rpc.NewServer(facade, opts...))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
	}()

	fmt.Print(binding.Banner())
	logger.Info("serving", "service", rpc.ServiceName, "addr", lis.Addr().String(), "db", dbPath,
		"npoints", cfg.Spectrum.NPoints, "current_A", cfg.Spectrum.Current)
	return gs.Serve(lis)
}

// #endregion main

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/funvibe/matchcore/internal/planrpc"
)

func (a *app) serve(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("serve", &c)
	listen := fs.String("listen", "", "address to listen on (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, nil))

	var opts []planrpc.Option
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		opts = append(opts, planrpc.WithStore(st))
	}
	srv, err := planrpc.NewServer(cfg, logger, opts...)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Listen, err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		srv.GracefulStop()
		return <-done
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/blackjack-trainer/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overrides the config (e.g. :8080)"`
}

func (c *ServeCmd) Run(g *Globals, out io.Writer) error {
	e, err := g.setup(os.Stderr)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = e.config.ServerAddress()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(e.sessionFactory(st), e.clock, e.logger)
	_, _ = fmt.Fprintln(out, titleStyle.Render("Blackjack trainer")+" listening on ws://"+addr+"/ws")
	return srv.Run(ctx, addr)
}

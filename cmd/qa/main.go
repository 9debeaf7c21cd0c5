// Command qa is the terminal client of the Q&A service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/odooqa/qa-system/internal/cli"
	"github.com/odooqa/qa-system/internal/infrastructure/http/qaclient"
	"github.com/odooqa/qa-system/internal/infrastructure/tokenstore"
	"github.com/odooqa/qa-system/internal/pkg/config"
	"github.com/odooqa/qa-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "qa",
	})

	gateway := qaclient.New(qaclient.Options{
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.HTTPTimeout,
		BreakerFailures: cfg.Breaker.Failures,
		BreakerTimeout:  cfg.Breaker.Timeout,
		Logger:          logger.Component("gateway"),
	})

	root := cli.NewRootCommand(cli.Env{
		Gateway: gateway,
		Tokens:  tokenstore.NewFile(cfg.TokenFile),
		Out:     os.Stdout,
		Log:     log,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

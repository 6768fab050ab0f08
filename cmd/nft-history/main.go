package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/kpozdnikin/nft-history/internal/config"
	"github.com/kpozdnikin/nft-history/internal/domain"
	httpHandler "github.com/kpozdnikin/nft-history/internal/handler/http"
	"github.com/kpozdnikin/nft-history/internal/infrastructure/blockspan"
	"github.com/kpozdnikin/nft-history/internal/logging"
	"github.com/kpozdnikin/nft-history/internal/metrics"
	"github.com/kpozdnikin/nft-history/internal/service"
	"github.com/kpozdnikin/nft-history/internal/view"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version string

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "nft-history",
		Usage:   "look up NFT metadata and ownership history via the Blockspan API",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config/config.yaml", EnvVars: []string{"CONFIG_PATH"}, Usage: "path to the YAML config file"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the lookup page and JSON API",
				Action: serve,
			},
			{
				Name:  "lookup",
				Usage: "look up one NFT and print its card and transfer history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "chain", Value: domain.DefaultChain.String(), Usage: "chain identifier"},
					&cli.StringFlag{Name: "contract", Required: true, Usage: "contract address"},
					&cli.StringFlag{Name: "token-id", Required: true, Usage: "token ID"},
				},
				Action: lookup,
			},
			{
				Name:   "chains",
				Usage:  "list supported chains",
				Action: chains,
			},
		},
	}
}

type deps struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	client  *blockspan.Client
}

func initDeps(c *cli.Context, logOut io.Writer) (*deps, error) {
	cfg, err := config.GetConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, logOut)
	if cfg.Blockspan.APIKey == config.PlaceholderAPIKey {
		log.Warn().Msg("blockspan api key is the placeholder, lookups will be rejected")
	}

	m := metrics.New()
	client := blockspan.NewClient(blockspan.Config{
		BaseURL:  cfg.Blockspan.BaseURL,
		APIKey:   cfg.Blockspan.APIKey,
		PageSize: cfg.Blockspan.PageSize,
	}, m, log)

	return &deps{cfg: cfg, log: log, metrics: m, client: client}, nil
}

func serve(c *cli.Context) error {
	d, err := initDeps(c, os.Stdout)
	if err != nil {
		return err
	}

	renderer, err := view.NewHTMLRenderer()
	if err != nil {
		return err
	}

	handler := httpHandler.NewLookupHTTPHandler(func() *service.Lookup {
		return service.NewLookup(d.client, d.metrics, d.log)
	}, renderer, d.metrics.Handler(), d.log)

	server := &http.Server{
		Addr:              d.cfg.HTTP.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	d.log.Info().Str("name", d.cfg.App.Name).Str("version", d.cfg.App.Version).Str("environment", d.cfg.App.Environment).Msg("starting")

	g := &run.Group{}
	g.Add(run.SignalHandler(c.Context, os.Interrupt, syscall.SIGTERM))
	g.Add(func() error {
		d.log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			d.log.Error().Err(err).Msg("http server shutdown")
		}
	})

	err = g.Run()
	var signalErr run.SignalError
	if errors.As(err, &signalErr) {
		d.log.Info().Str("signal", signalErr.Signal.String()).Msg("servers stopped")
		return nil
	}
	return err
}

func lookup(c *cli.Context) error {
	d, err := initDeps(c, os.Stderr)
	if err != nil {
		return err
	}

	l := service.NewLookup(d.client, d.metrics, d.log)
	l.SetChain(domain.Chain(c.String("chain")))
	l.SetContract(c.String("contract"))
	l.SetTokenID(c.String("token-id"))

	state := l.Fetch(c.Context)
	return view.RenderText(c.App.Writer, state)
}

func chains(c *cli.Context) error {
	for _, chain := range domain.SupportedChains {
		if _, err := fmt.Fprintln(c.App.Writer, chain); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token_portfolio/internal/infrastructure/presenter"
	"token_portfolio/internal/infrastructure/restapi"
	"token_portfolio/internal/infrastructure/walletloader"
	"token_portfolio/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const defaultConfigPath = "config/config.yml"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "portfolio",
		Usage: "Show the token holdings of a wallet priced in USD",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath,
				Usage:   "path to the YAML configuration",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			lookupCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server (HTML page, JSON API, metrics)",
		Action: func(c *cli.Context) error {
			app, err := newApplication(c.String("config"), false)
			if err != nil {
				return err
			}
			defer app.close()

			if !app.cfg.Logging.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			page, err := restapi.NewPageHandler(app.portfolio, app.appLogger)
			if err != nil {
				return fmt.Errorf("compile page template: %w", err)
			}
			router := restapi.SetupRouter(restapi.Handlers{
				Portfolio: restapi.NewPortfolioHandler(app.portfolio, app.appLogger),
				Network:   restapi.NewNetworkHandler(app.networks, app.portfolio),
				Page:      page,
			}, app.cfg.Swagger, app.zapLogger)

			srv := &http.Server{
				Addr:         ":" + app.cfg.Server.Port,
				Handler:      router,
				ReadTimeout:  time.Duration(app.cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(app.cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(app.cfg.Server.IdleTimeout) * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "address", srv.Addr, "network", app.network.Identifier)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-c.Context.Done():
			}

			logger.Info("Shutdown signal received, stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown failed", "error", err)
				return err
			}
			logger.Info("HTTP server stopped")
			return nil
		},
	}
}

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Print the portfolio table of one or more wallets",
		ArgsUsage: "<address>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "wallets",
				Aliases: []string{"w"},
				Usage:   "read addresses from a file, one per line",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "also write the tables to this XLSX file",
			},
		},
		Action: func(c *cli.Context) error {
			app, err := newApplication(c.String("config"), true)
			if err != nil {
				return err
			}
			defer app.close()

			addresses := c.Args().Slice()
			if path := c.String("wallets"); path != "" {
				wallets, err := walletloader.NewWalletFileLoader(path, app.appLogger.Info).GetWallets()
				if err != nil {
					return err
				}
				for _, w := range wallets {
					addresses = append(addresses, w.Address)
				}
			}
			if len(addresses) == 0 {
				return cli.Exit("no wallet address given; pass addresses or --wallets", 2)
			}

			tables := make([]presenter.Table, 0, len(addresses))
			failed := 0
			for i, address := range addresses {
				result, err := app.portfolio.GetPortfolio(c.Context, address)
				if err != nil {
					failed++
				}
				table := presenter.NewTable(result)
				tables = append(tables, table)

				if i > 0 {
					fmt.Fprintln(c.App.Writer)
				}
				if err := presenter.WriteText(c.App.Writer, table); err != nil {
					return err
				}
			}

			if path := c.String("xlsx"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := presenter.WriteXLSX(f, tables...); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				logger.Info("Workbook written", "path", path, "wallets", len(tables))
			}

			if failed == len(addresses) {
				return cli.Exit("no portfolio could be retrieved", 1)
			}
			return nil
		},
	}
}

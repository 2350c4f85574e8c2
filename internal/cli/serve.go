package cli

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"unigate/internal/api"
	"unigate/internal/chain/eth"
	"unigate/internal/etherscan"
	"unigate/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	Long: `Start the HTTP server on the configured listen address.

The server needs the database path, the JSON-RPC endpoint and the deployed
contract addresses from the config file or UNIGATE_* environment variables.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	var chainID *big.Int
	if cfg.Eth.ChainID != 0 {
		chainID = big.NewInt(cfg.Eth.ChainID)
	}
	ledger, err := eth.NewClient(cfg.Eth.RPC, chainID)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var scan *etherscan.Client
	if cfg.Etherscan.APIKey != "" {
		scan, err = etherscan.NewClient(cfg.Etherscan.APIKey, &etherscan.ClientOptions{
			BaseURL: cfg.Etherscan.BaseURL,
			ChainID: cfg.Etherscan.ChainID,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Warn().Msg("no etherscan api key, transaction history disabled")
	}

	server, err := api.New(cfg, st, ledger, scan, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

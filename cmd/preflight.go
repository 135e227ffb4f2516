package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/polymarket-seeder/internal/app"
	"github.com/mselser95/polymarket-seeder/internal/render"
	"github.com/mselser95/polymarket-seeder/pkg/config"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"github.com/mselser95/polymarket-seeder/pkg/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check the factory and deployer before running an artifact",
	Long: `Connects to the RPC endpoint the artifacts use and checks that a contract is
deployed at the factory address. When the private key variable is set, also
reads the deployer balance and estimates gas for a sample createMarket call
against DEPLOY_GAS_LIMIT.

Read-only: nothing is signed or broadcast, and the key is never printed.`,
	RunE: runPreflight,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(preflightCmd)
	preflightCmd.Flags().String("rpc-url", "", "RPC endpoint (default: value of DEPLOY_RPC_URL_VAR)")
	preflightCmd.Flags().String("factory", "", "Market factory address (default FACTORY_ADDRESS)")
}

type preflightOptions struct {
	RPCURL     string
	Factory    string
	PrivateKey string
}

func runPreflight(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := preflightOptions{
		PrivateKey: os.Getenv(cfg.DeployPrivateKeyVar),
	}
	opts.RPCURL, _ = cmd.Flags().GetString("rpc-url")
	if opts.RPCURL == "" {
		opts.RPCURL = os.Getenv(cfg.DeployRPCURLVar)
	}
	opts.Factory, _ = cmd.Flags().GetString("factory")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return preflight(ctx, cfg, logger, opts, cmd.OutOrStdout())
}

func preflight(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts preflightOptions, out io.Writer) error {
	if opts.RPCURL == "" {
		return fmt.Errorf("RPC URL required: set %s or --rpc-url", cfg.DeployRPCURLVar)
	}

	factory := opts.Factory
	if factory == "" {
		factory = cfg.FactoryAddress
	}
	if factory == "" {
		return fmt.Errorf("factory address required: set FACTORY_ADDRESS or --factory")
	}

	deploy, err := app.NewDeployConfig(cfg, factory)
	if err != nil {
		return fmt.Errorf("deploy config: %w", err)
	}

	req := &wallet.PreflightRequest{Factory: deploy.Factory}

	if opts.PrivateKey != "" {
		deployer, err := wallet.AddressFromPrivateKey(opts.PrivateKey)
		if err != nil {
			return fmt.Errorf("read %s: %w", cfg.DeployPrivateKeyVar, err)
		}
		req.Deployer = &deployer

		encoder, err := render.NewCalldataRenderer(deploy)
		if err != nil {
			return err
		}
		req.CallData, err = encoder.Encode(types.ValidatedMarket{Title: "preflight", Duration: 172800})
		if err != nil {
			return err
		}
	}

	client, err := wallet.NewClient(opts.RPCURL, logger)
	if err != nil {
		return fmt.Errorf("create wallet client: %w", err)
	}

	report, err := client.Preflight(ctx, req)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	printReport(out, report, cfg.DeployGasLimit)

	if !report.FactoryDeployed() {
		return fmt.Errorf("no contract deployed at %s", report.Factory.Hex())
	}
	return nil
}

func printReport(out io.Writer, report *wallet.Report, gasLimit uint64) {
	fmt.Fprintf(out, "Chain ID:  %s\n", report.ChainID)
	fmt.Fprintf(out, "Factory:   %s", report.Factory.Hex())
	if report.FactoryDeployed() {
		fmt.Fprintf(out, " (%d bytes of code)\n", report.FactoryCodeSize)
	} else {
		fmt.Fprintf(out, " (NO CODE)\n")
	}

	if report.Deployer == nil {
		fmt.Fprintf(out, "Deployer:  not configured, balance and gas checks skipped\n")
		return
	}

	fmt.Fprintf(out, "Deployer:  %s\n", report.Deployer.Hex())
	fmt.Fprintf(out, "Balance:   %s ETH\n", formatEther(report.Balance))

	if report.EstimatedGas == 0 {
		return
	}
	fmt.Fprintf(out, "Gas/call:  %d", report.EstimatedGas)
	if gasLimit > 0 && report.EstimatedGas > gasLimit {
		fmt.Fprintf(out, " (WARNING: exceeds DEPLOY_GAS_LIMIT %d)", gasLimit)
	}
	fmt.Fprintln(out)
}

func formatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Text('f', 6)
}

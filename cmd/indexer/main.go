package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "ERC20 Transfer event client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream decoded Transfer events as JSON lines",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("ws", "", "websocket RPC URL")
	watchCmd.Flags().String("out", "-", "output JSONL path, - for stdout")
	watchCmd.Flags().String("errors", "", "decode errors JSONL path (disabled when empty)")
	watchCmd.Flags().String("metrics-addr", "", "Prometheus listen address (disabled when empty)")
	watchCmd.Flags().Uint64("limit", 0, "stop after this many events, 0 means unlimited")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the native balance of an address",
		RunE:  runBalance,
	}

	balanceCmd.Flags().String("rpc", "", "RPC URL")
	balanceCmd.Flags().String("address", "", "account address")
	balanceCmd.Flags().Duration("timeout", 0, "request timeout")
	balanceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(balanceCmd)

	tokenBalanceCmd := &cobra.Command{
		Use:   "token-balance",
		Short: "Print the ERC20 token balance of a wallet",
		RunE:  runTokenBalance,
	}

	tokenBalanceCmd.Flags().String("rpc", "", "RPC URL")
	tokenBalanceCmd.Flags().String("token", "", "token contract address")
	tokenBalanceCmd.Flags().String("wallet", "", "wallet address")
	tokenBalanceCmd.Flags().Duration("timeout", 0, "request timeout")
	tokenBalanceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(tokenBalanceCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

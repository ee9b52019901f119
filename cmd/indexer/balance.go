package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transferScope/internal/chain"
	"transferScope/internal/codec"
	"transferScope/internal/config"
)

const balancePrecision = 18

func runBalance(cmd *cobra.Command, _ []string) error {
	return withChain(cmd, func(ctx context.Context, cfg config.BalanceConfig, client *chain.Client, logger *zap.Logger) error {
		if err := validateBalance(cfg); err != nil {
			return err
		}

		balance, err := client.GetBalance(ctx, cfg.Address)
		if err != nil {
			return err
		}
		logger.Debug("balance fetched", zap.String("address", cfg.Address))
		return printAmount(cmd, balance)
	})
}

func runTokenBalance(cmd *cobra.Command, _ []string) error {
	return withChain(cmd, func(ctx context.Context, cfg config.BalanceConfig, client *chain.Client, logger *zap.Logger) error {
		if err := validateTokenBalance(cfg); err != nil {
			return err
		}

		balance, err := client.GetTokenBalance(ctx, cfg.Token, cfg.Wallet)
		if err != nil {
			return err
		}
		logger.Debug("token balance fetched",
			zap.String("token", cfg.Token),
			zap.String("wallet", cfg.Wallet),
		)
		return printAmount(cmd, balance)
	})
}

func validateBalance(cfg config.BalanceConfig) error {
	_, err := codec.ValidateWalletAddress(cfg.Address)
	return err
}

func validateTokenBalance(cfg config.BalanceConfig) error {
	if cfg.Token == "" {
		return fmt.Errorf("token address is required")
	}
	if _, err := codec.Checksum(cfg.Token); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if _, err := codec.ValidateWalletAddress(cfg.Wallet); err != nil {
		return fmt.Errorf("wallet: %w", err)
	}
	return nil
}

func withChain(cmd *cobra.Command, fn func(context.Context, config.BalanceConfig, *chain.Client, *zap.Logger) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBalance(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	return fn(ctx, cfg, client, logger)
}

func printAmount(cmd *cobra.Command, amount *big.Rat) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), chain.FormatAmount(amount, balancePrecision))
	return err
}

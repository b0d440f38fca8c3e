// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/internal/validation"
)

var actorEmail string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "app",
	Short: "Inventory Identity",
	Long:  `Identity, authorization and audit service of the inventory platform.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorEmail, "as", "", "Email of the principal administrative commands act as")
}

// withApp runs fn against the full dependency graph, configured from the
// environment like serve, without tracing or metrics export.
func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	specs := loadSpecs()

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, specs, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(serviceName, logger), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// actorScope resolves --as into the scope commands run under, the same checks
// and audit trail apply as for a logged in principal.
func actorScope(ctx context.Context, a *app) (*types.Scope, error) {
	if actorEmail == "" {
		return nil, errors.New("--as is required for this command")
	}

	p, err := a.storage.GetPrincipalByEmail(ctx, validation.NormalizeEmail(actorEmail))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no principal with email %s", actorEmail)
	}
	if err != nil {
		return nil, err
	}

	if !p.IsActive() {
		return nil, fmt.Errorf("principal %s is inactive", actorEmail)
	}

	return types.NewScope(p), nil
}

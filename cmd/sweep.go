// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire stale invitations and purge expired sessions once",
	Long:  `Run a single sweep, for deployments that schedule it externally instead of relying on serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.sweeper.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Expired invitations: %d\nPurged session tokens: %d\n", res.ExpiredInvitations, res.PurgedTokens)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

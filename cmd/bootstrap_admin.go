// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var bootstrapEmail string

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create a root-admin and print its temporary password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			p, temporary, err := a.accounts.BootstrapRoot(ctx, bootstrapEmail)
			if err != nil {
				return fmt.Errorf("failed to bootstrap root-admin: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Root admin created: %s (ID: %s)\n", p.Email, p.ID)
			fmt.Fprintf(out, "Temporary password: %s\n", temporary)
			fmt.Fprintln(out, "The password must be changed at first login.")
			return nil
		})
	},
}

func init() {
	bootstrapAdminCmd.Flags().StringVar(&bootstrapEmail, "email", "", "Email of the root-admin")
	_ = bootstrapAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(bootstrapAdminCmd)
}

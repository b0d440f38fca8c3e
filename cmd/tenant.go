// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/inventory-identity/internal/types"
)

var (
	tenantSlug         string
	tenantContactEmail string
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			t, err := a.tenants.CreateTenant(ctx, scope, types.TenantAttrs{
				Name:         args[0],
				Slug:         tenantSlug,
				ContactEmail: tenantContactEmail,
			})
			if err != nil {
				return fmt.Errorf("failed to create tenant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s (ID: %s)\n", t.Name, t.ID)
			return nil
		})
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenants visible to the acting principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			tenants, err := a.tenants.ListTenants(ctx, scope)
			if err != nil {
				return fmt.Errorf("failed to list tenants: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSLUG\tACTIVE\tCREATED_AT")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", t.ID, t.Name, t.Slug, t.Active, t.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		})
	},
}

func setTenantActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				scope, err := actorScope(ctx, a)
				if err != nil {
					return err
				}

				if _, err := a.tenants.SetTenantActive(ctx, scope, args[0], active); err != nil {
					return fmt.Errorf("failed to %s tenant: %w", use, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Tenant %sd: %s\n", use, args[0])
				return nil
			})
		},
	}
}

func init() {
	createTenantCmd.Flags().StringVar(&tenantSlug, "slug", "", "URL safe identifier of the tenant")
	createTenantCmd.Flags().StringVar(&tenantContactEmail, "contact-email", "", "Contact email of the tenant")
	_ = createTenantCmd.MarkFlagRequired("slug")

	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(setTenantActiveCmd("activate", "Activate a tenant", true))
	tenantCmd.AddCommand(setTenantActiveCmd("deactivate", "Deactivate a tenant", false))
}

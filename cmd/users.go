// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant users",
}

var inviteUserCmd = &cobra.Command{
	Use:   "invite [tenant-id] [email] [role]",
	Short: "Invite a user to a tenant",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			created, err := a.accounts.CreateInvitation(ctx, scope, args[1], args[2], args[0])
			if err != nil {
				return fmt.Errorf("failed to invite user: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invitation created for %s, expires %s\n", created.Invitation.Email, created.Invitation.ExpiresAt)
			fmt.Fprintf(out, "Link: %s\n", created.URL)
			return nil
		})
	},
}

var setUserRoleCmd = &cobra.Command{
	Use:   "set-role [user-id] [role]",
	Short: "Change the role of a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			p, err := a.accounts.ChangeRole(ctx, scope, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to change role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", p.Email, p.Role)
			return nil
		})
	},
}

var setUserStatusCmd = &cobra.Command{
	Use:   "set-status [user-id] [active|inactive]",
	Short: "Activate or deactivate a user, deactivation signs the user out everywhere",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			p, err := a.accounts.SetStatus(ctx, scope, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to change status: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", p.Email, p.Status)
			return nil
		})
	},
}

var resetUserPasswordCmd = &cobra.Command{
	Use:   "reset-password [user-id]",
	Short: "Replace the password of a user with a temporary one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			temporary, err := a.accounts.ResetPassword(ctx, scope, args[0])
			if err != nil {
				return fmt.Errorf("failed to reset password: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Temporary password: %s\n", temporary)
			return nil
		})
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete [user-id]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			scope, err := actorScope(ctx, a)
			if err != nil {
				return err
			}

			if err := a.accounts.DeletePrincipal(ctx, scope, args[0]); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User deleted: %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(inviteUserCmd)
	usersCmd.AddCommand(setUserRoleCmd)
	usersCmd.AddCommand(setUserStatusCmd)
	usersCmd.AddCommand(resetUserPasswordCmd)
	usersCmd.AddCommand(deleteUserCmd)
}

// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/inventory-identity/migrations"
)

const auditTrigger = "audit_log_no_update_delete"

// migration is a parsed `migrate` invocation, target is -1 when no version was given.
type migration struct {
	command string
	target  int64
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|check] [version]",
	Short: "Run database migrations",
	Long: `Apply or inspect the schema of principals, tenants, session tokens, invitations and the audit log.

down accepts an optional version to roll back to. check fails when migrations are pending
or when the audit log has lost its append-only trigger.`,
	Args: func(cmd *cobra.Command, args []string) error {
		_, err := parseMigration(args)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := parseMigration(args)
		if err != nil {
			return err
		}

		dsn, _ := cmd.Flags().GetString("dsn")
		format, _ := cmd.Flags().GetString("format")

		if dsn == "" {
			return errors.New("a DSN is required, use --dsn or the DSN environment variable")
		}

		return migrate(cmd.Context(), cmd.OutOrStdout(), dsn, format, m)
	},
}

func init() {
	migrateCmd.Flags().String("dsn", os.Getenv("DSN"), "PostgreSQL DSN connection string, defaults to $DSN")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func parseMigration(args []string) (*migration, error) {
	m := &migration{command: "up", target: -1}

	if len(args) > 2 {
		return nil, fmt.Errorf("too many arguments: %q", args)
	}

	if len(args) > 0 {
		m.command = args[0]
	}

	switch m.command {
	case "up", "down", "status", "check":
	default:
		return nil, fmt.Errorf("invalid command: %q", m.command)
	}

	if len(args) == 2 {
		if m.command != "down" {
			return nil, fmt.Errorf("only down accepts a version, got %q", args)
		}

		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid version number: %q", args[1])
		}
		m.target = v
	}

	return m, nil
}

func migrate(ctx context.Context, out io.Writer, dsn, format string, m *migration) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("invalid DSN: %v", err)
	}

	db := stdlib.OpenDB(*config)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %v", err)
	}

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	switch m.command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		return reportResults(out, format, results)
	case "down":
		results, err := down(ctx, provider, m.target)
		if err != nil {
			return err
		}
		return reportResults(out, format, results)
	case "status":
		return reportStatus(ctx, out, format, provider)
	case "check":
		return check(ctx, out, format, provider, db)
	}

	return nil
}

func down(ctx context.Context, provider *goose.Provider, target int64) ([]*goose.MigrationResult, error) {
	if target >= 0 {
		return provider.DownTo(ctx, target)
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return nil, err
	}

	return []*goose.MigrationResult{result}, nil
}

func reportResults(out io.Writer, format string, results []*goose.MigrationResult) error {
	if format == "json" {
		if results == nil {
			results = []*goose.MigrationResult{}
		}
		return json.NewEncoder(out).Encode(map[string]interface{}{"applied": results})
	}

	for _, r := range results {
		fmt.Fprintf(out, "%s (%s)\n", r.Source.Path, r.Duration.Round(time.Millisecond))
	}
	return nil
}

func reportStatus(ctx context.Context, out io.Writer, format string, provider *goose.Provider) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		return json.NewEncoder(out).Encode(statuses)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "APPLIED AT\tMIGRATION")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", appliedAt, s.Source.Path)
	}
	return w.Flush()
}

func check(ctx context.Context, out io.Writer, format string, provider *goose.Provider, db *sql.DB) error {
	hasPending, err := provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	status := "ok"
	if hasPending {
		status = "pending"
	} else {
		var installed bool
		err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = $1)", auditTrigger).Scan(&installed)
		if err != nil {
			return fmt.Errorf("failed to inspect audit log trigger: %w", err)
		}
		if !installed {
			status = "audit_log_mutable"
		}
	}

	if format == "json" {
		if err := json.NewEncoder(out).Encode(map[string]interface{}{"status": status, "version": current}); err != nil {
			return err
		}
	}

	switch status {
	case "pending":
		return fmt.Errorf("migrations are pending: current version %d", current)
	case "audit_log_mutable":
		return fmt.Errorf("trigger %s is missing, the audit log accepts updates", auditTrigger)
	}

	if format != "json" {
		fmt.Fprintf(out, "Database is up to date (version %d)\n", current)
	}
	return nil
}

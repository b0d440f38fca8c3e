// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/canonical/inventory-identity/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of inventory-identity",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (revision %s, %s)\n", serviceName, version.Version, version.Revision(), runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

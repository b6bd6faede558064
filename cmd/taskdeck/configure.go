// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/secrets"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

func newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure <provider>",
		Short: "Store or remove a provider API key in the OS keychain",
		Long:  "Save a provider API key in the operating system keychain so runs no longer depend on environment variables.",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigure,
	}

	cmd.Flags().String("api-key", "", "API key to store (read from stdin when omitted)")
	cmd.Flags().Bool("delete", false, "remove the stored key instead")

	return cmd
}

func runConfigure(cmd *cobra.Command, args []string) error {
	providerID := args[0]
	resolver := secrets.NewResolver(secretStoreFactory())

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := resolver.Forget(providerID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored key for %q.\n", providerID)
		return nil
	}

	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "API key for %q: ", providerID)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return tderr.Wrap(err, tderr.CodeSecretInvalidInput, "reading API key from stdin")
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "API key must not be empty")
	}

	if err := resolver.Set(providerID, key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %q.\n", providerID)
	return nil
}

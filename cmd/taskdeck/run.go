// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/fsys"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <title>",
		Short: "Execute a task card against the configured provider",
		Long:  "Send a task to the LLM and apply the file operations it emits to the project folder.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().StringP("folder", "f", "", "project folder extracted file paths are resolved against")
	cmd.Flags().StringP("description", "d", "", "longer task description")
	cmd.Flags().StringP("provider", "p", "", "provider id (default from config)")
	cmd.Flags().String("card", "", "card id recorded in execution history (generated when empty)")
	cmd.Flags().StringArray("attach", nil, "file to quote in the prompt, relative to the folder (repeatable)")
	cmd.Flags().StringArray("skill", nil, "skill name to attach from the skill library (repeatable)")
	cmd.Flags().BoolP("watch", "w", false, "after the task completes, watch the folder and report changes until interrupted")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	description, _ := cmd.Flags().GetString("description")
	providerID, _ := cmd.Flags().GetString("provider")
	cardID, _ := cmd.Flags().GetString("card")
	attached, _ := cmd.Flags().GetStringArray("attach")
	skillNames, _ := cmd.Flags().GetStringArray("skill")
	watch, _ := cmd.Flags().GetBool("watch")

	if watch && folder == "" {
		return fmt.Errorf("--watch requires --folder")
	}
	if cardID == "" {
		cardID = uuid.NewString()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, execs, err := buildClient(cfg)
	if err != nil {
		return err
	}
	defer execs.Close()

	skills, err := selectSkills(cfg, skillNames, args[0]+" "+description)
	if err != nil {
		return err
	}

	resp := client.ExecuteTask(cmd.Context(),
		agent.Task{CardID: cardID, Title: args[0], Description: description},
		agent.TaskContext{
			FolderPath:    folder,
			AttachedFiles: attached,
			Skills:        skills,
			Provider:      providerID,
		},
	)

	if err := printResponse(cmd, cardID, resp); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchFolder(cmd.Context(), cmd.OutOrStdout(), cardID, folder)
}

// watchFolder reports filesystem changes under folder until ctx is done.
func watchFolder(ctx context.Context, w io.Writer, cardID, folder string) error {
	watcher := fsys.NewWatcher(changePrinter{w: w})
	if err := watcher.WatchFolder(cardID, folder); err != nil {
		return err
	}
	defer watcher.Close()

	fmt.Fprintf(w, "Watching %s for changes (Ctrl-C to stop).\n", folder)
	<-ctx.Done()
	return nil
}

// changePrinter adapts the watcher's refresh callback to terminal output.
type changePrinter struct {
	w io.Writer
}

func (p changePrinter) RefreshFileTree() {
	fmt.Fprintln(p.w, "Project files changed.")
}

func selectSkills(cfg *config.Config, names []string, taskText string) ([]*agent.Skill, error) {
	dir := resolveSkillsDir(cfg)
	if dir == "" {
		return nil, nil
	}
	all, err := agent.LoadSkills(dir)
	if err != nil {
		return nil, err
	}
	return agent.SelectSkills(all, names, taskText), nil
}

func printResponse(cmd *cobra.Command, cardID string, resp agent.Response) error {
	w := cmd.OutOrStdout()

	if !resp.Success {
		fmt.Fprintf(w, "Task failed after %d attempt(s): %s\n", resp.Attempts, resp.Error)
		return fmt.Errorf("task failed")
	}

	fmt.Fprintf(w, "Task completed (card %s, %d attempt(s)).\n", cardID, resp.Attempts)
	printPaths(w, "Created", resp.FilesCreated)
	printPaths(w, "Modified", resp.FilesModified)
	printPaths(w, "Errors", resp.FileErrors)

	if len(resp.FilesCreated) == 0 && len(resp.FilesModified) == 0 && len(resp.FileErrors) == 0 {
		fmt.Fprintln(w, strings.TrimSpace(resp.Content))
	}
	return nil
}

func printPaths(w io.Writer, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", label)
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

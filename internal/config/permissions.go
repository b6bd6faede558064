// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

//go:build !windows

package config

import (
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file at path is
// readable by group or world. Provider endpoints and credential env names
// live in that file; keys themselves stay in the keyring, so a loose mode
// is worth flagging but never fails startup.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping config permission check", "path", path, "error", err)
		return
	}

	perm := info.Mode().Perm()
	if perm&0o044 == 0 {
		return
	}

	slog.Warn("config file is readable by other users",
		"path", path,
		"mode", info.Mode(),
		"recommended", "0600",
	)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

//go:build windows

package config

// WarnInsecurePermissions is a no-op on Windows, where file access is
// governed by ACLs rather than Unix mode bits.
func WarnInsecurePermissions(path string) {}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the filesystem collaborator used by the file-operation applier and
// the prompt context reader. Implementations must tolerate concurrent reads;
// writes are serialized by the agent client.
type FS interface {
	Exists(path string) (bool, error)
	Read(path string) (string, error)
	Write(path, content string) error
	MkdirAll(path string) error
	Remove(path string) error
}

// Notifier receives fire-and-forget UI refresh requests after file
// operations change the project tree. No acknowledgement is awaited.
type Notifier interface {
	RefreshFileTree()
}

// NopNotifier discards refresh requests.
type NopNotifier struct{}

func (NopNotifier) RefreshFileTree() {}

// OSFS implements FS on the host filesystem.
type OSFS struct{}

func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OSFS) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (OSFS) Write(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

// ListFiles returns relative paths of regular files directly under root and
// one level of subdirectories, skipping dot-directories and anything under
// node_modules. The prompt builder uses this to pick context files.
func ListFiles(root string, limit int) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if len(out) >= limit {
			break
		}
		name := entry.Name()
		if name[0] == '.' || name == "node_modules" {
			continue
		}
		if !entry.IsDir() {
			out = append(out, name)
			continue
		}

		sub, err := os.ReadDir(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, se := range sub {
			if len(out) >= limit {
				break
			}
			if se.IsDir() || se.Name()[0] == '.' {
				continue
			}
			out = append(out, filepath.Join(name, se.Name()))
		}
	}
	return out, nil
}

//go:build !windows

// Package ptyexec wraps the platform PTY facility: a Manager spawns login
// shells under a PTY, a Session owns the spawned process and exposes a
// locked write/resize/shutdown surface to the terminal WebSocket bridge.
package ptyexec

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// Manager is a singleton wrapping PTY creation. It holds no state of its
// own beyond a mutex serializing the brief openpty call, matching the
// original's plain-mutex-around-PtySystem design.
type Manager struct {
	mu sync.Mutex
}

// NewManager constructs a Manager.
func NewManager() *Manager {
	return &Manager{}
}

// CreateSession opens a new PTY sized (max(rows,1), max(cols,1)), spawns
// $SHELL (or /bin/bash if unset/blank) with TERM=xterm-256color attached to
// the slave end, and returns the Session together with a reader handle for
// PTY output. The reader is returned separately so the caller can run it in
// its own goroutine while the Session serializes writer/resize/shutdown
// access.
func (m *Manager) CreateSession(rows, cols uint16) (*Session, io.Reader, error) {
	rows = clampSize(rows)
	cols = clampSize(cols)

	shell := os.Getenv("SHELL")
	if trimmedBlank(shell) {
		shell = "/bin/bash"
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	m.mu.Lock()
	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	m.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("start pty: %w", err)
	}

	s := &Session{
		id:     uuid.New().String(),
		master: master,
		cmd:    cmd,
	}

	return s, master, nil
}

func clampSize(v uint16) uint16 {
	if v < 1 {
		return 1
	}
	return v
}

func trimmedBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

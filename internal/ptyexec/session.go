//go:build !windows

package ptyexec

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// Session owns one spawned shell's PTY master and child process. Exactly
// one Session exists per terminal WebSocket connection. writer, master, and
// child are each guarded by their own mutex: only the connection's own
// tasks (the WS loop and its reader goroutine) ever contend on them.
type Session struct {
	id string

	writerMu sync.Mutex
	masterMu sync.Mutex
	childMu  sync.Mutex

	master *os.File
	cmd    *exec.Cmd
}

// ID returns the session's internal identifier. Never exposed on the wire.
func (s *Session) ID() string {
	return s.id
}

// Write sends bytes to the PTY's stdin, flushing them to the kernel before
// returning. Returns an error if the PTY is gone; callers log and continue.
func (s *Session) Write(data []byte) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	if _, err := s.master.Write(data); err != nil {
		return fmt.Errorf("pty write: %w", err)
	}
	return nil
}

// Resize applies a new terminal size, clamping both dimensions to at least
// 1 and zeroing the pixel dimensions.
func (s *Session) Resize(rows, cols uint16) error {
	s.masterMu.Lock()
	defer s.masterMu.Unlock()

	rows = clampSize(rows)
	cols = clampSize(cols)

	if err := pty.Setsize(s.master, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("pty resize: %w", err)
	}
	return nil
}

// Shutdown kills the child process and closes the master end. Best-effort:
// errors are swallowed, matching the spec's "errors are swallowed
// (best-effort)" contract.
func (s *Session) Shutdown() {
	s.childMu.Lock()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	s.childMu.Unlock()

	s.masterMu.Lock()
	_ = s.master.Close()
	s.masterMu.Unlock()
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/StarsInDmajor/literm/internal/sandbox"
)

type watchClientMessage struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

type watchEvent struct {
	Event     string `json:"event"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// handleWatchWS upgrades to the directory-watch bridge: a per-connection
// fsnotify.Watcher and a canonical-path → client-supplied-path map, both
// owned exclusively by this connection.
func (s *Server) handleWatchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("watch ws accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := context.Background()
	watchEnabled := s.state.Config.Features.EnableWatch

	var watcher *fsnotify.Watcher
	if watchEnabled {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize watcher")
			sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "file watching unavailable"})
			watchEnabled = false
		} else {
			defer watcher.Close()
		}
	}

	tracked := make(map[string]string) // canonical path -> client-supplied path

	incoming := make(chan []byte)
	recvErr := make(chan error, 1)
	go func() {
		for {
			msgType, data, err := conn.Read(ctx)
			if err != nil {
				recvErr <- err
				return
			}
			if msgType == websocket.MessageText {
				incoming <- data
			}
		}
	}()

	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	if watcher != nil {
		fsEvents = watcher.Events
		fsErrors = watcher.Errors
	}

	log.Info().Msg("new watch ws connection")

	for {
		select {
		case data := <-incoming:
			handleWatchMessage(ctx, s, conn, watcher, tracked, data, watchEnabled)

		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			forwardWatchEvent(ctx, conn, s.state.Sandbox, tracked, ev)

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			log.Warn().Err(err).Msg("watcher error")
			sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "watcher error"})

		case err := <-recvErr:
			if err != nil {
				var closeErr websocket.CloseError
				if !errors.As(err, &closeErr) {
					log.Warn().Err(err).Msg("watch ws recv error")
				}
			}
			log.Info().Msg("watch ws connection ended")
			return
		}
	}
}

func handleWatchMessage(
	ctx context.Context,
	s *Server,
	conn *websocket.Conn,
	watcher *fsnotify.Watcher,
	tracked map[string]string,
	payload []byte,
	watchEnabled bool,
) {
	var msg watchClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "invalid payload"})
		return
	}

	switch msg.Action {
	case "watch":
		if !watchEnabled {
			sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "file watching disabled"})
			return
		}
		resolved, err := s.state.Sandbox.Resolve(msg.Path)
		if err != nil {
			sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "invalid path"})
			return
		}
		if _, already := tracked[resolved]; !already {
			if err := watcher.Add(resolved); err != nil {
				log.Error().Err(err).Str("path", resolved).Msg("failed to watch path")
				sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "watch failed"})
				return
			}
		}
		tracked[resolved] = msg.Path
		sendWatchEvent(ctx, conn, watchEvent{Event: "watching", Path: msg.Path})

	case "unwatch":
		resolved, err := s.state.Sandbox.Resolve(msg.Path)
		if err != nil {
			return
		}
		if _, ok := tracked[resolved]; ok {
			delete(tracked, resolved)
			if watcher != nil {
				_ = watcher.Remove(resolved)
			}
		}
		sendWatchEvent(ctx, conn, watchEvent{Event: "unwatched", Path: msg.Path})

	default:
		sendWatchEvent(ctx, conn, watchEvent{Event: "error", Message: "invalid payload"})
	}
}

// forwardWatchEvent resolves each changed path to a user-visible relative
// string using the four-step fallback chain from spec.md §4.4, and emits a
// change event for the first one that succeeds. Paths that match none of
// the four steps (neither tracked nor under the sandbox) are dropped.
func forwardWatchEvent(ctx context.Context, conn *websocket.Conn, resolver *sandbox.Resolver, tracked map[string]string, ev fsnotify.Event) {
	timestamp := time.Now().Unix()

	if rel, ok := resolveWatchedPath(resolver, tracked, ev.Name); ok {
		sendWatchEvent(ctx, conn, watchEvent{Event: "change", Path: rel, Timestamp: timestamp})
	}
}

func resolveWatchedPath(resolver *sandbox.Resolver, tracked map[string]string, rawPath string) (string, bool) {
	canonical, err := filepath.EvalSymlinks(rawPath)

	// (i) canonicalize and look up the tracked map.
	if err == nil {
		if rel, ok := tracked[canonical]; ok {
			return rel, true
		}
		// (ii) canonicalize and strip the sandbox root.
		if rel, ok := resolver.ToRelative(canonical); ok {
			return rel, true
		}
	}

	// (iii) look up the raw path in the tracked map.
	if rel, ok := tracked[rawPath]; ok {
		return rel, true
	}

	// (iv) strip the sandbox root from the raw path.
	if rel, ok := resolver.ToRelative(rawPath); ok {
		return rel, true
	}

	return "", false
}

func sendWatchEvent(ctx context.Context, conn *websocket.Conn, ev watchEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, data)
}

package server

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/StarsInDmajor/literm/internal/ptyexec"
)

const (
	termOpInput  byte = 0x01
	termOpResize byte = 0x02
)

// handleTerminalWS upgrades to a binary-framed terminal bridge: one PTY
// session per connection, output forwarded 1:1 from PTY reads to WS binary
// frames, input framed by a leading opcode byte.
func (s *Server) handleTerminalWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("terminal ws accept failed")
		return
	}

	sess, reader, err := s.state.PTY.CreateSession(24, 80)
	if err != nil {
		log.Error().Err(err).Msg("failed to create pty session")
		conn.Close(websocket.StatusInternalError, "failed to create pty session")
		return
	}

	ctx := context.Background()
	readerDone := make(chan struct{})
	go runTerminalReader(ctx, reader, conn, readerDone)

	// nhooyr.io/websocket answers pings with pongs internally as part of
	// Read's protocol handling, so no explicit ping/pong branch is needed
	// here — Read only ever surfaces Text/Binary frames or a close error.
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		if msgType != websocket.MessageBinary || len(data) == 0 {
			continue
		}

		switch data[0] {
		case termOpInput:
			if len(data) > 1 {
				if err := sess.Write(data[1:]); err != nil {
					log.Warn().Err(err).Msg("pty write failed")
				}
			}
		case termOpResize:
			if len(data) >= 5 {
				rows := binary.BigEndian.Uint16(data[1:3])
				cols := binary.BigEndian.Uint16(data[3:5])
				if err := sess.Resize(rows, cols); err != nil {
					log.Warn().Err(err).Msg("pty resize failed")
				}
			}
		}
	}

	sess.Shutdown()
	<-readerDone

	log.Info().Str("session", sess.ID()).Msg("terminal ws connection ended")
	conn.Close(websocket.StatusNormalClosure, "")
}

// runTerminalReader copies PTY output to WS binary frames until EOF, a
// read error, or the connection dies. It signals completion by closing
// done so the owning handler can wait for it before returning.
func runTerminalReader(ctx context.Context, reader io.Reader, conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if werr := conn.Write(ctx, websocket.MessageBinary, buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Msg("pty read failed")
			}
			conn.Close(websocket.StatusNormalClosure, "shell exited")
			return
		}
	}
}

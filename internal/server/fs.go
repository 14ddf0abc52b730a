package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/StarsInDmajor/literm/internal/sandbox"
)

type fsEntry struct {
	Name      string `json:"name"`
	EntryType string `json:"entry_type"`
	Size      int64  `json:"size"`
	MTime     int64  `json:"mtime"`
}

type fsListResponse struct {
	OK      bool      `json:"ok"`
	Path    string     `json:"path"`
	Entries []fsEntry `json:"entries"`
}

func (s *Server) handleFsList(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	showHidden := r.URL.Query().Get("show_hidden") == "true"

	resolved, err := s.resolvePath(rel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		writeError(w, r, ioError("failed to list directory", err))
		return
	}

	entries := make([]fsEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !showHidden && len(name) > 0 && name[0] == '.' {
			continue
		}

		entryType := "file"
		var size int64
		var mtime int64
		if info, err := de.Info(); err == nil {
			if info.IsDir() {
				entryType = "dir"
			}
			size = info.Size()
			mtime = info.ModTime().Unix()
		} else {
			// Best-effort mtime: fall back to epoch on stat error.
			if de.IsDir() {
				entryType = "dir"
			}
		}

		entries = append(entries, fsEntry{
			Name:      name,
			EntryType: entryType,
			Size:      size,
			MTime:     mtime,
		})
	}

	writeJSON(w, http.StatusOK, fsListResponse{OK: true, Path: rel, Entries: entries})
}

type fsContentResponse struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleFsContent(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")

	resolved, err := s.resolvePath(rel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		writeError(w, r, ioError("failed to read file", err))
		return
	}

	if !utf8.Valid(data) {
		writeError(w, r, ioError("file is not valid UTF-8", errors.New("invalid utf-8")))
		return
	}

	writeJSON(w, http.StatusOK, fsContentResponse{OK: true, Path: rel, Content: string(data)})
}

func (s *Server) handleFsRaw(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")

	resolved, err := s.resolvePath(rel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		writeError(w, r, ioError("failed to open file", err))
		return
	}
	defer f.Close()

	mtype, err := mimetype.DetectFile(resolved)
	contentType := "application/octet-stream"
	if err == nil && mtype != nil {
		contentType = mtype.String()
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, f); err != nil {
		// Too late to change the response status; just log via writeError's
		// side channel would double-write headers, so only record it.
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to stream file")
		return
	}
}

// resolvePath resolves rel through the sandbox, translating the resolver's
// error into the apiError shape expected by writeError.
func (s *Server) resolvePath(rel string) (string, error) {
	resolved, err := s.state.Sandbox.Resolve(rel)
	if err != nil {
		if errors.Is(err, sandbox.ErrEscapesRoot) {
			return "", badRequest("path escapes root")
		}
		return "", ioError("failed to resolve path", err)
	}
	return resolved, nil
}

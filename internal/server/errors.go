package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// kind classifies an apiError so writeError can pick the right HTTP status
// and log level, per spec.md §7.
type kind int

const (
	kindUnauthorized kind = iota
	kindBadRequest
	kindIO
	kindInternal
)

// apiError is the error type every handler in this package returns.
type apiError struct {
	kind kind
	msg  string
	err  error
}

func (e *apiError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *apiError) Unwrap() error {
	return e.err
}

func unauthorized(msg string) *apiError {
	return &apiError{kind: kindUnauthorized, msg: msg}
}

func badRequest(msg string) *apiError {
	return &apiError{kind: kindBadRequest, msg: msg}
}

func ioError(msg string, err error) *apiError {
	return &apiError{kind: kindIO, msg: msg, err: err}
}

func internalError(msg string, err error) *apiError {
	return &apiError{kind: kindInternal, msg: msg, err: err}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError writes the {"error": "..."} JSON body with the status code
// matching err's kind, logging at the level spec.md §7 assigns each kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apiError
	if !errors.As(err, &ae) {
		ae = internalError("internal error", err)
	}

	status := http.StatusInternalServerError
	switch ae.kind {
	case kindUnauthorized:
		status = http.StatusUnauthorized
		log.Debug().Str("path", r.URL.Path).Msg(ae.Error())
	case kindBadRequest:
		status = http.StatusBadRequest
		log.Debug().Str("path", r.URL.Path).Msg(ae.Error())
	case kindIO:
		status = http.StatusInternalServerError
		log.Warn().Str("path", r.URL.Path).Msg(ae.Error())
	case kindInternal:
		status = http.StatusInternalServerError
		log.Error().Str("path", r.URL.Path).Msg(ae.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: ae.msg})
}

package server

import (
	"net/http"
)

// handleFsHDF5 is the optional, explicitly-out-of-core HDF5 preview
// endpoint described in spec.md §9 / SPEC_FULL.md §4.9. It is only
// registered when features.enable_hdf5 is true. The path still goes
// through the sandbox, and the handler waits on a separate goroutine that
// does no work: no HDF5 parsing library is available anywhere in the
// retrieved pack, so the handler reports unavailability rather than
// fabricating a binding.
func (s *Server) handleFsHDF5(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")

	if _, err := s.resolvePath(rel); err != nil {
		writeError(w, r, err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
	}()
	<-done

	writeJSON(w, http.StatusNotImplemented, errorBody{Error: "hdf5 preview not available in this build"})
}

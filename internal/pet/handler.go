package pet

import (
	"log"
	"net/http"
	"time"

	"github.com/jamesprial/petview/internal/audit"
	"github.com/jamesprial/petview/internal/graphql"
	"github.com/jamesprial/petview/internal/preload"
	"github.com/jamesprial/petview/internal/query"
)

const pageOperation = "page"

// Handler serves the pet page. Every request preloads AppPetByIdQuery before
// any markup is written, then streams the page. It is the error boundary for
// fetch failures: the core rendering code never swallows them.
type Handler struct {
	sender graphql.Sender
	root   *Root
	audit  *audit.Logger
}

// NewHandler returns a Handler fetching through sender. logger may be nil.
func NewHandler(sender graphql.Sender, logger *audit.Logger) *Handler {
	if sender == nil {
		panic("graphql sender must not be nil")
	}
	return &Handler{sender: sender, root: NewRoot(), audit: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	handle := preload.Preload(r.Context(), h.sender, query.AppPetByIdQuery, nil)

	// Failures known before anything is written get a proper status.
	if _, state, err := handle.Peek(); state == preload.Failed {
		h.fail(w, handle, err, start)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	if err := h.root.pageStart(w); err != nil {
		log.Printf("pet: write page: %v", err)
		return
	}
	err := h.root.Stream(r.Context(), w, handle)
	if err != nil {
		log.Printf("pet: request %s: %v", handle.ID(), err)
		_ = h.root.renderError(w)
		h.audit.Record(pageOperation, handle.ID(), nil, "error: "+err.Error(), start)
	} else {
		h.audit.Record(pageOperation, handle.ID(), nil, "ok", start)
	}
	_ = h.root.pageEnd(w)
}

func (h *Handler) fail(w http.ResponseWriter, handle PetHandle, err error, start time.Time) {
	log.Printf("pet: request %s: %v", handle.ID(), err)
	h.audit.Record(pageOperation, handle.ID(), nil, "error: "+err.Error(), start)
	http.Error(w, "could not load pet", http.StatusBadGateway)
}

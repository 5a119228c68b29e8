// Package webstats implements the live-stats HTTP endpoint spec section 6
// calls for on a long run: a JSON snapshot of every registered
// component's stats.Registry, served over a minimal gorilla/mux router
// and, with --live, opened straight into the operator's browser. It is a
// slimmed-down descendant of the teacher's monitoring package: no pause/
// continue/tick control surface, since this module's driver is a batch
// loop rather than an interactively-steppable engine, just the read-only
// reporting half.
package webstats

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/sarchlab/cachesim/component"
)

// Server serves a live snapshot of every registered component's counters.
type Server struct {
	components map[string]component.Component
	names      []string // registration order, for stable listing
}

// NewServer creates an empty Server; Register each component to be
// reported before calling Start.
func NewServer() *Server {
	return &Server{components: make(map[string]component.Component)}
}

// Register adds c to the set of components the live endpoint reports on.
func (s *Server) Register(c component.Component) {
	if _, ok := s.components[c.Name()]; ok {
		return
	}

	s.components[c.Name()] = c
	s.names = append(s.names, c.Name())
}

// Handler returns the server's routes as a plain http.Handler, so a
// caller (or a test) can drive it without binding a real socket.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/components", s.listComponents)
	r.HandleFunc("/api/stats/{name}", s.componentStats)
	r.HandleFunc("/api/stats", s.allStats)

	return r
}

// Start binds a listener on port (0 for an OS-assigned port) and serves
// in the background, returning the address it bound to. If openBrowser is
// true, it also opens that /api/stats URL in the operator's default browser,
// mirroring the teacher's monitoring.Monitor.StartServer + --live flag
// convention.
func (s *Server) Start(port int, openBrowser bool) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("webstats: %w", err)
	}

	addr := listener.Addr().(*net.TCPAddr)
	url := fmt.Sprintf("http://localhost:%d/api/stats", addr.Port)

	go func() {
		_ = http.Serve(listener, s.Handler())
	}()

	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "webstats: could not open browser: %v\n", err)
		}
	}

	return url, nil
}

func (s *Server) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(s.names))
	copy(names, s.names)
	sort.Strings(names)

	writeJSON(w, names)
}

func (s *Server) componentStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	c, ok := s.components[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, c.StatsRegistry().Snapshot())
}

func (s *Server) allStats(w http.ResponseWriter, _ *http.Request) {
	snap := make(map[string]map[string]uint64, len(s.names))
	for _, name := range s.names {
		snap[name] = s.components[name].StatsRegistry().Snapshot()
	}

	writeJSON(w, snap)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Package registrytest serves canned npm and crates.io responses over HTTP
// for tests.
//
// A single [Server] answers both protocols:
//
//	srv := registrytest.New(t)
//	srv.Add(registrytest.Package{Name: "serde", Versions: []string{"1.0.2", "1.0.1"}})
//	client := crates.NewClient(srv.CratesURL(), nil, 0)
//
// Every package request is counted per name, and a package can be made to
// fail with [Server.Fail].
package registrytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Malformed, passed to [Server.Fail], makes the server answer 200 with a
// body that is not valid JSON.
const Malformed = 0

// Package is a registry fixture. Versions are listed newest first; the
// first entry is reported as the latest version.
type Package struct {
	Name        string
	Author      string
	Description string
	License     string
	Homepage    string
	Repository  string
	Versions    []string
}

// Server is a fixture registry backed by httptest.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	order []string
	pkgs  map[string]Package
	fails map[string]int
	hits  map[string]int
}

// New starts a fixture registry that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		pkgs:  make(map[string]Package),
		fails: make(map[string]int),
		hits:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/npm", func(r chi.Router) {
		r.Get("/-/v1/search", s.npmSearch)
		r.Get("/{name}", s.npmPackage)
	})
	r.Route("/crates/api/v1", func(r chi.Router) {
		r.Get("/crates", s.cratesSearch)
		r.Get("/crates/{name}", s.cratesCrate)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// NpmURL is the base URL of the npm protocol endpoints.
func (s *Server) NpmURL() string { return s.URL + "/npm" }

// CratesURL is the base URL of the crates.io protocol endpoints.
func (s *Server) CratesURL() string { return s.URL + "/crates/api/v1" }

// Add registers packages, replacing earlier fixtures with the same name.
func (s *Server) Add(pkgs ...Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pkgs {
		if _, ok := s.pkgs[p.Name]; !ok {
			s.order = append(s.order, p.Name)
		}
		s.pkgs[p.Name] = p
	}
}

// Fail makes requests for name answer with status, or with a malformed
// body when status is [Malformed].
func (s *Server) Fail(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[name] = status
}

// Hits returns how many times the package document of name was requested.
func (s *Server) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}

// TotalHits returns the number of package document requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// lookup records a hit and resolves the fixture. It writes the response
// itself and returns ok=false when the request must not be answered with
// the fixture.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (Package, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Package{}, false
	}

	s.mu.Lock()
	s.hits[name]++
	p, found := s.pkgs[name]
	status, failing := s.fails[name]
	s.mu.Unlock()

	switch {
	case failing && status == Malformed:
		w.Write([]byte(`{"name": `))
		return Package{}, false
	case failing:
		w.WriteHeader(status)
		return Package{}, false
	case !found:
		http.NotFound(w, r)
		return Package{}, false
	}
	return p, true
}

func (s *Server) npmPackage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	versions := make(map[string]any, len(p.Versions))
	for _, v := range p.Versions {
		versions[v] = map[string]any{"name": p.Name, "version": v}
	}
	doc := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"license":     p.License,
		"homepage":    p.Homepage,
		"dist-tags":   map[string]string{"latest": latest(p)},
		"versions":    versions,
	}
	if p.Author != "" {
		doc["author"] = map[string]string{"name": p.Author}
	}
	if p.Repository != "" {
		doc["repository"] = map[string]string{"type": "git", "url": p.Repository}
	}
	writeJSON(w, doc)
}

func (s *Server) cratesCrate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	versions := make([]map[string]any, 0, len(p.Versions))
	for i, v := range p.Versions {
		entry := map[string]any{"num": v, "license": p.License, "yanked": false}
		if i == 0 && p.Author != "" {
			entry["published_by"] = map[string]string{"login": strings.ToLower(p.Author), "name": p.Author}
		}
		versions = append(versions, entry)
	}
	writeJSON(w, map[string]any{
		"crate": map[string]any{
			"name":        p.Name,
			"max_version": latest(p),
			"description": p.Description,
			"homepage":    p.Homepage,
			"repository":  p.Repository,
		},
		"versions": versions,
	})
}

func (s *Server) npmSearch(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	var objects []map[string]any
	for _, p := range s.search(r.URL.Query().Get("text"), size) {
		objects = append(objects, map[string]any{
			"package": map[string]string{"name": p.Name, "version": latest(p)},
		})
	}
	writeJSON(w, map[string]any{"objects": objects, "total": len(objects)})
}

func (s *Server) cratesSearch(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	var crates []map[string]string
	for _, p := range s.search(r.URL.Query().Get("q"), size) {
		crates = append(crates, map[string]string{"name": p.Name, "newest_version": latest(p)})
	}
	writeJSON(w, map[string]any{"crates": crates})
}

// search returns fixtures whose name contains term, in registration order.
func (s *Server) search(term string, limit int) []Package {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Package
	for _, name := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		if strings.Contains(name, term) {
			out = append(out, s.pkgs[name])
		}
	}
	return out
}

func latest(p Package) string {
	if len(p.Versions) == 0 {
		return ""
	}
	return p.Versions[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

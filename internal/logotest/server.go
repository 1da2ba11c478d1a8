// Package logotest provides an in-memory fake of the Logo Objects REST API
// for tests.
//
// Collections registered with Collection support list, get, create, update,
// patch and delete. List requests honour limit, offset, fields, count and
// simple "FIELD eq literal" filters joined with "and". Every request is
// recorded with its query string decoded by query.Parse.
package logotest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
	"github.com/julienschmidt/httprouter"
)

// IDField is the record key collections use as the record ID.
const IDField = "INTERNAL_REFERENCE"

// Request is a recorded request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Options  query.ListOptions
	Params   map[string]string
	Header   http.Header
	Body     []byte
}

// Failure is a canned error response.
type Failure struct {
	Status     int
	Body       string
	RetryAfter string
}

// Server is a fake Logo Objects API.
type Server struct {
	*httptest.Server

	router *httprouter.Router

	mu          sync.Mutex
	requests    []Request
	failures    []Failure
	collections map[string]*collection
}

type collection struct {
	records []map[string]any
	nextID  int
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		router:      httprouter.New(),
		collections: make(map[string]*collection),
	}
	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "No HTTP resource was found that matches the request URI.")
	})
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	opts, err := query.Parse(r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	req := Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Options:  opts,
		Header:   r.Header.Clone(),
		Body:     body,
	}
	if _, ps, _ := s.router.Lookup(r.Method, r.URL.Path); ps != nil {
		req.Params = make(map[string]string, len(ps))
		for _, p := range ps {
			req.Params[p.Key] = p.Value
		}
	}
	s.requests = append(s.requests, req)

	var fail *Failure
	if len(s.failures) > 0 {
		f := s.failures[0]
		s.failures = s.failures[1:]
		fail = &f
	}
	s.mu.Unlock()

	if fail != nil {
		if fail.RetryAfter != "" {
			w.Header().Set("Retry-After", fail.RetryAfter)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fail.Status)
		io.WriteString(w, fail.Body)
		return
	}

	s.router.ServeHTTP(w, r)
}

// Fail queues error responses returned, in order, before normal handling
// resumes.
func (s *Server) Fail(failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failures...)
}

// Handle registers a custom handler, e.g. for a named operation.
// The path uses httprouter syntax: "/items/:id/ExportToXML".
func (s *Server) Handle(method, path string, h httprouter.Handle) {
	s.router.Handle(method, path, h)
}

// JSON registers a handler that answers with status and v encoded as JSON.
func (s *Server) JSON(method, path string, status int, v any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, status, v)
	})
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Collection registers CRUD routes for name, seeded with records. Records
// without an INTERNAL_REFERENCE are numbered from 1.
func (s *Server) Collection(name string, records ...map[string]any) {
	c := &collection{}
	for _, rec := range records {
		c.insert(clone(rec))
	}

	s.mu.Lock()
	s.collections[name] = c
	s.mu.Unlock()

	base := "/" + name
	item := base + "/:id"
	s.router.GET(base, s.list(c))
	s.router.POST(base, s.create(c))
	s.router.GET(item, s.get(c))
	s.router.PUT(item, s.update(c, true))
	s.router.PATCH(item, s.update(c, false))
	s.router.DELETE(item, s.remove(c))
}

// Records returns a snapshot of a collection.
func (s *Server) Records(name string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	out := make([]map[string]any, len(c.records))
	for i, rec := range c.records {
		out[i] = clone(rec)
	}
	return out
}

func (s *Server) list(c *collection) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		opts, _ := query.Parse(r.URL.RawQuery)

		s.mu.Lock()
		defer s.mu.Unlock()
		matched, err := filter(c.records, opts.Q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if opts.Sort != nil {
			sortRecords(matched, opts.Sort)
		}

		offset := 0
		if opts.Offset != nil && *opts.Offset > 0 {
			offset = min(*opts.Offset, len(matched))
		}
		end := len(matched)
		limit := 0
		if opts.Limit != nil && *opts.Limit > 0 {
			limit = *opts.Limit
			end = min(offset+limit, len(matched))
		}

		items := make([]map[string]any, 0, end-offset)
		for _, rec := range matched[offset:end] {
			items = append(items, project(rec, opts.Fields))
		}

		resp := map[string]any{
			"items":  items,
			"offset": offset,
			"limit":  limit,
		}
		if opts.Count != nil && *opts.Count {
			resp["count"] = len(matched)
		}
		if end < len(matched) {
			resp["next"] = fmt.Sprintf("%s?offset=%d&limit=%d", r.URL.Path, end, limit)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) get(c *collection) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		opts, _ := query.Parse(r.URL.RawQuery)

		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(p.ByName("id"))
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found.")
			return
		}
		writeJSON(w, http.StatusOK, project(c.records[i], opts.Fields))
	}
}

func (s *Server) create(c *collection) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, "The request is invalid.")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if id, ok := rec[IDField]; ok && c.find(fmt.Sprint(id)) >= 0 {
			writeError(w, http.StatusConflict, "Record already exists.")
			return
		}
		c.insert(rec)
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) update(c *collection, replace bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "The request is invalid.")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(p.ByName("id"))
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found.")
			return
		}
		id := c.records[i][IDField]
		rec := c.records[i]
		if replace {
			rec = map[string]any{}
		}
		for k, v := range patch {
			rec[k] = v
		}
		rec[IDField] = id
		c.records[i] = rec
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) remove(c *collection) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(p.ByName("id"))
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found.")
			return
		}
		c.records = append(c.records[:i], c.records[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (c *collection) insert(rec map[string]any) {
	if id, ok := rec[IDField]; ok {
		if n, err := strconv.Atoi(fmt.Sprint(id)); err == nil && n > c.nextID {
			c.nextID = n
		}
	} else {
		c.nextID++
		rec[IDField] = c.nextID
	}
	c.records = append(c.records, rec)
}

func (c *collection) find(id string) int {
	for i, rec := range c.records {
		if fmt.Sprint(rec[IDField]) == id {
			return i
		}
	}
	return -1
}

// filter applies a conjunction of "FIELD eq literal" and
// "FIELD like 'prefix*'" terms.
func filter(records []map[string]any, q string) ([]map[string]any, error) {
	type cond struct {
		field  string
		value  string
		prefix bool
	}
	var conds []cond
	if q != "" {
		for _, term := range strings.Split(q, " and ") {
			parts := strings.SplitN(strings.TrimSpace(term), " ", 3)
			if len(parts) != 3 || (parts[1] != "eq" && parts[1] != "like") {
				return nil, fmt.Errorf("unsupported filter term %q", term)
			}
			value := fmt.Sprint(core.ParseScalar(parts[2]))
			if strings.HasPrefix(parts[2], "'") {
				value = strings.ReplaceAll(value, "''", "'")
			}
			c := cond{field: parts[0], value: value}
			if parts[1] == "like" {
				if !strings.HasSuffix(value, "*") {
					return nil, fmt.Errorf("unsupported like pattern %q", term)
				}
				c.value, c.prefix = strings.TrimSuffix(value, "*"), true
			}
			conds = append(conds, c)
		}
	}

	var out []map[string]any
	for _, rec := range records {
		ok := true
		for _, c := range conds {
			got := fmt.Sprint(rec[c.field])
			if c.prefix && !strings.HasPrefix(got, c.value) || !c.prefix && got != c.value {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func sortRecords(records []map[string]any, s *query.Sort) {
	desc := s.Direction == query.Desc
	sort.SliceStable(records, func(i, j int) bool {
		for _, f := range s.Fields {
			a, b := fmt.Sprint(records[i][f]), fmt.Sprint(records[j][f])
			if a == b {
				continue
			}
			if desc {
				return a > b
			}
			return a < b
		}
		return false
	})
}

func project(rec map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return clone(rec)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

func clone(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"Message": message})
}

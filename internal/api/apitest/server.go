// Package apitest runs an in-memory imitation of the Pulse catalog API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Upload records an image file received in a product write.
type Upload struct {
	FileName    string
	ContentType string
	Size        int
}

// Request records one call the server received.
type Request struct {
	Method      string
	Path        string
	RequestID   string
	ContentType string
	Fields      map[string]string // multipart text fields for product writes
}

type account struct {
	password string
	user     session.User
}

type failure struct {
	status  int
	message string
}

// Server is the fake API. The API root is URL().
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]session.User
	products map[string]catalog.Product
	order    []string
	uploads  map[string]Upload
	requests []Request
	failures map[string]failure
	holds    map[string]chan struct{}
	now      func() time.Time
}

// New starts a server and closes it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: make(map[string]account),
		tokens:   make(map[string]session.User),
		products: make(map[string]catalog.Product),
		uploads:  make(map[string]Upload),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/products", s.authed(s.handleList))
	mux.HandleFunc("GET /api/products/{id}", s.authed(s.handleGet))
	mux.HandleFunc("POST /api/products", s.authed(s.handleCreate))
	mux.HandleFunc("PUT /api/products/{id}", s.authed(s.handleUpdate))
	mux.HandleFunc("DELETE /api/products/{id}", s.authed(s.handleDelete))

	s.srv = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// URL is the API base path, ending in /api.
func (s *Server) URL() string { return s.srv.URL + "/api" }

// Close shuts the server down, releasing any held requests.
func (s *Server) Close() {
	s.mu.Lock()
	for key, ch := range s.holds {
		close(ch)
		delete(s.holds, key)
	}
	s.mu.Unlock()
	s.srv.Close()
}

// AddUser registers credentials and returns a token already valid for them.
func (s *Server) AddUser(email, password string, u session.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Email == "" {
		u.Email = email
	}
	s.accounts[email] = account{password: password, user: u}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = u
	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]session.User)
}

// Seed stores products, assigning ids where missing, and returns them.
func (s *Server) Seed(products ...catalog.Product) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt == nil {
			ts := s.now()
			p.CreatedAt = &ts
		}
		if _, exists := s.products[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
		out = append(out, p)
	}
	return out
}

// Product returns the stored product.
func (s *Server) Product(id string) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// Products returns all stored products in insertion order.
func (s *Server) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// Upload returns the last image file received for product id.
func (s *Server) Upload(id string) (Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.uploads[id]
	return u, ok
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls matched method and path prefix.
func (s *Server) Count(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// Fail makes every later request matching "METHOD /path" answer status with
// message (empty message => empty body). Pass status 0 to clear.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = failure{status: status, message: message}
}

// Hold blocks requests matching "METHOD /path" until the returned release
// func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == ch {
				delete(s.holds, route)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

func (s *Server) listLocked() []catalog.Product {
	out := make([]catalog.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			RequestID:   r.Header.Get("X-Request-ID"),
			ContentType: r.Header.Get("Content-Type"),
		})
		hold := s.holds[route]
		f, failing := s.failures[route]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, valid := s.tokens[token]
		s.mu.Unlock()
		if !ok || !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized: invalid or missing token"})
			return
		}
		h(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Email]
	if !ok || acct.password != body.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = acct.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": acct.user})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := s.listLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "products": products})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.products[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": p, "message": "Product fetched successfully"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, upload, fields, err := parseProductForm(r)
	s.noteFields(r, fields)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	p.ID = uuid.NewString()
	ts := s.now()
	p.CreatedAt = &ts
	if upload != nil {
		p.Image = catalog.RemoteImage(uploadURL(p.ID, upload.FileName))
		s.uploads[p.ID] = *upload
	}
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, upload, fields, err := parseProductForm(r)
	s.noteFields(r, fields)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	existing, ok := s.products[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	switch {
	case upload != nil:
		p.Image = catalog.RemoteImage(uploadURL(id, upload.FileName))
		s.uploads[id] = *upload
	case p.Image.IsZero():
		// an explicit empty image field removes the stored image
		if _, sent := fields["image"]; !sent {
			p.Image = existing.Image
		} else {
			delete(s.uploads, id)
		}
	}
	s.products[id] = p
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	if _, ok := s.products[id]; !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	delete(s.products, id)
	delete(s.uploads, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (s *Server) noteFields(r *http.Request, fields map[string]string) {
	reqID := r.Header.Get("X-Request-ID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].RequestID == reqID {
			s.requests[i].Fields = fields
			return
		}
	}
}

// parseProductForm reads a multipart product write the way the real
// service does: text fields plus an optional image file or image URL.
func parseProductForm(r *http.Request) (catalog.Product, *Upload, map[string]string, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return catalog.Product{}, nil, nil, fmt.Errorf("Expected multipart form data")
	}

	fields := make(map[string]string)
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	p := catalog.Product{
		Name:        fields["name"],
		Model:       fields["productModel"],
		Origin:      fields["productOrigin"],
		Brand:       fields["brand"],
		Description: fields["description"],
	}
	if p.Name == "" || p.Model == "" {
		return p, nil, fields, fmt.Errorf("Name and model are required")
	}

	price, err := decimal.NewFromString(fields["price"])
	if err != nil || price.IsNegative() {
		return p, nil, fields, fmt.Errorf("Invalid price")
	}
	p.Price = price

	qty, err := strconv.Atoi(fields["quantity"])
	if err != nil || qty < 0 {
		return p, nil, fields, fmt.Errorf("Invalid quantity")
	}
	p.Quantity = qty

	if url, ok := fields["image"]; ok && url != "" {
		p.Image = catalog.RemoteImage(url)
	}

	var upload *Upload
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return p, nil, fields, fmt.Errorf("Unreadable image")
		}
		n, _ := io.Copy(io.Discard, f)
		f.Close()
		upload = &Upload{FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Size: int(n)}
	}
	return p, upload, fields, nil
}

func uploadURL(id, name string) string {
	return "https://cdn.pulse.test/uploads/" + id + "/" + name
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

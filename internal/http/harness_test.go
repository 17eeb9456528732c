package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/config"
	"catalogconsole/internal/domain"
	"catalogconsole/internal/http/handlers"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/metrics"
	"catalogconsole/internal/services"
	"catalogconsole/internal/session"
)

const (
	adminEmail = "ada@example.com"
	userEmail  = "uma@example.com"
	password   = "s3cret-pass"
)

// upstream is an in-memory stand-in for the catalog REST API.
type upstream struct {
	mu      sync.Mutex
	users   map[string]domain.User
	tokens  map[string]domain.User
	data    map[string][]map[string]any
	fail    map[string]int
	nextID  int
	meCalls int
}

func newUpstream() *upstream {
	return &upstream{
		users: map[string]domain.User{
			adminEmail: {ID: "u-admin", Name: "Ada Admin", CompanyEmail: adminEmail, Role: domain.RoleAdmin},
			userEmail:  {ID: "u-user", Name: "Uma User", CompanyEmail: userEmail, Role: domain.RoleUser},
		},
		tokens: map[string]domain.User{},
		data: map[string][]map[string]any{
			"categories": {
				{"_id": "c1", "title": "Tires"},
				{"_id": "c2", "title": "Wheels"},
			},
			"subcategories": {
				{"_id": "s1", "title": "Summer", "categoryId": "c1"},
			},
			"products": {
				{"_id": "p1", "modelNo": "TX-100", "categoryType": "subcategory", "categoryRef": "s1", "description": "All season", "isActive": true},
			},
			"product-tire-keys": {
				{"_id": "k1", "type": "summer", "color": "yellow"},
			},
		},
		fail: map[string]int{},
	}
}

// seed replaces a collection, e.g. to get enough rows for paging.
func (u *upstream) seed(resource string, items []map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.data[resource] = items
}

// failWith makes every request to resource answer status.
func (u *upstream) failWith(resource string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fail[resource] = status
}

// expireTokens drops every upstream login, as a server restart would.
func (u *upstream) expireTokens() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens = map[string]domain.User{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (u *upstream) caller(r *http.Request) (domain.User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	usr, ok := u.tokens[tok]
	return usr, ok && tok != ""
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch r.URL.Path {
	case "/auth/login":
		var in domain.LoginPayload
		_ = json.NewDecoder(r.Body).Decode(&in)
		usr, ok := u.users[in.CompanyEmail]
		if !ok || in.Password != password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		u.nextID++
		tok := fmt.Sprintf("tok-%d", u.nextID)
		u.tokens[tok] = usr
		writeJSON(w, http.StatusOK, map[string]any{"data": usr, "token": tok})
		return
	case "/auth/me":
		u.meCalls++
		usr, ok := u.caller(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": usr})
		return
	case "/auth/logout":
		delete(u.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	if _, ok := u.caller(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not authenticated"})
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := parts[0]
	items, known := u.data[resource]
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such route"})
		return
	}
	if status, ok := u.fail[resource]; ok {
		writeJSON(w, status, map[string]any{"message": "catalog database unavailable"})
		return
	}

	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		writeJSON(w, http.StatusOK, map[string]any{"data": items})
	case r.Method == http.MethodPost && len(parts) == 1:
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		u.nextID++
		in["_id"] = fmt.Sprintf("%s-%d", resource[:1], u.nextID)
		u.data[resource] = append(items, in)
		writeJSON(w, http.StatusCreated, map[string]any{"data": in})
	case r.Method == http.MethodPatch && len(parts) == 2:
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		for _, it := range items {
			if it["_id"] == parts[1] {
				for k, v := range in {
					it[k] = v
				}
				writeJSON(w, http.StatusOK, map[string]any{"data": it})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
	case r.Method == http.MethodDelete && len(parts) == 2:
		kept := items[:0]
		for _, it := range items {
			if it["_id"] != parts[1] {
				kept = append(kept, it)
			}
		}
		u.data[resource] = kept
		writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed"})
	}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		App: config.AppConfig{
			Env:          "test",
			TemplatesDir: "../../web/templates",
			StaticDir:    "../../web/static",
		},
		API:     config.APIConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
		Session: config.SessionConfig{Backend: config.SessionBackendMemory, TTL: time.Hour},
		Auth:    config.AuthConfig{AllowedRoles: []string{domain.RoleAdmin}, DashboardRoles: []string{domain.RoleAdmin}},
		Limits: config.LimitsConfig{
			LoginAttempts:  100,
			LoginWindow:    time.Minute,
			RequestsPerMin: 1000,
			MaxBodyBytes:   1 << 20,
		},
	}
}

type console struct {
	app *fiber.App
	api *upstream
	reg *prometheus.Registry
}

// newConsole wires the real app against a fake upstream. tweak adjusts the
// config before anything is built.
func newConsole(t *testing.T, tweak func(*config.Config)) *console {
	t.Helper()
	api := newUpstream()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	if tweak != nil {
		tweak(&cfg)
	}
	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	catalog := services.NewCatalog(client, m, cfg.API.Timeout)
	t.Cleanup(catalog.Close)
	sessions := session.NewManager(session.NewMemoryRepo(), cfg.Session.TTL)
	auth := services.NewAuthService(client.Auth(), sessions, m)

	app := handlers.NewApp(handlers.NewDeps(cfg, auth, catalog, reg))
	return &console{app: app, api: api, reg: reg}
}

// browser keeps cookies across requests like a real client would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (c *console) browser(t *testing.T) *browser {
	return &browser{t: t, app: c.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post sends a urlencoded form. The csrf token is added from the cookie jar.
func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.cookies["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// login opens the login page for a csrf token, then signs in.
func (b *browser) login(email string) *http.Response {
	b.t.Helper()
	b.get("/login")
	if b.cookies["csrf_"] == "" {
		b.t.Fatal("csrf token missing")
	}
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the structured entries written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	restore := applog.SetOutput(&buf)
	defer restore()

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

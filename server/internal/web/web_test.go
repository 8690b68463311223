package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/locavail/locavail/server/internal/api"
	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/catalog"
	"github.com/locavail/locavail/server/internal/config"
	"github.com/locavail/locavail/server/internal/metrics"
	"github.com/locavail/locavail/server/internal/session"
	"github.com/locavail/locavail/server/internal/sheets"
	"github.com/locavail/locavail/server/internal/web"
	"github.com/locavail/locavail/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

// upstream serves the two CSV exports and counts requests per path.
type upstream struct {
	mu          sync.Mutex
	connections string
	status      int
	hits        map[string]int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hits[r.URL.Path]++
	if u.status != 0 {
		w.WriteHeader(u.status)
		return
	}
	switch r.URL.Path {
	case "/locations.csv":
		io.WriteString(w, "Location,Region\nLos Angeles Metro,US\n") //nolint:errcheck
	case "/connections.csv":
		io.WriteString(w, u.connections) //nolint:errcheck
	default:
		http.NotFound(w, r)
	}
}

func (u *upstream) set(connections string, status int) {
	u.mu.Lock()
	u.connections, u.status = connections, status
	u.mu.Unlock()
}

func (u *upstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

const defaultConnections = "Name,Current location,Pr. Location 1,Pr. Location 2\n" +
	"ann,\"Los Angeles Metro, CA\",Berlin,Sweden\n" +
	"bob, Ohio ,,\n"

// used mirrors defaultConnections: Sweden is only in Pr. Location 2.
var used = []string{"Los Angeles Metro, CA", "Berlin", "Ohio"}

type fixture struct {
	url      string
	upstream *upstream
	hub      *ws.Hub
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	up := &upstream{connections: defaultConnections, hits: make(map[string]int)}
	upSrv := httptest.NewServer(up)
	t.Cleanup(upSrv.Close)

	m := metrics.New()
	cache := sheets.NewCache(sheets.NewClient(config.SheetsConfig{Timeout: 5 * time.Second}), time.Minute, m)
	svc := availability.NewService(cache, availability.Sources{
		LocationsURL:   upSrv.URL + "/locations.csv",
		ConnectionsURL: upSrv.URL + "/connections.csv",
	}, m.Render)

	reg := session.NewRegistry(time.Hour)
	mgr, err := session.NewManager(config.SessionConfig{CookieName: "locavail_session", IdleTTL: time.Hour}, reg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	hub := ws.New()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := web.NewServer(web.Options{
		Service:  svc,
		Cache:    cache,
		Sessions: mgr,
		Metrics:  m,
		Hub:      hub,
		API:      api.New(svc, cache, reg),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return &fixture{url: ts.URL, upstream: up, hub: hub, metrics: m}
}

// newClient returns a browser-like client with its own cookie jar.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func fetch(t *testing.T, c *http.Client, req *http.Request) (int, string) {
	t.Helper()
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func getPage(t *testing.T, c *http.Client, base string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, base+"/", nil)
	return fetch(t, c, req)
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return fetch(t, c, req)
}

// mainSection returns the page body below the sidebar.
func mainSection(body string) string {
	if i := strings.Index(body, "<main>"); i >= 0 {
		return body[i:]
	}
	return ""
}

func expectedLabels(master []catalog.Entry, usedNames ...string) []string {
	var out []string
	for _, tier := range availability.Group(availability.Filter(master, availability.NewUsedSet(usedNames...))) {
		out = append(out, tier.Label())
	}
	return out
}

// --- page -------------------------------------------------------------------

func TestIndex_RendersGroupedAvailability(t *testing.T) {
	f := newFixture(t)
	code, body := getPage(t, newClient(t), f.url)
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200\n%s", code, body)
	}

	for _, want := range []string{
		"<title>Available Locations (Filtered)</title>",
		"Filtered from team usage (Current + Pr. Location 1 only) and grouped by priority.",
		`action="/locations"`,
		`action="/locations/remove"`,
		`action="/refresh"`,
		`<option value="-">-</option>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	main := mainSection(body)
	for _, label := range expectedLabels(catalog.Rebuild().Entries(), used...) {
		if !strings.Contains(main, "<summary>"+label+"</summary>") {
			t.Errorf("page missing tier %q", label)
		}
	}
	if strings.Count(main, "<details") != 3 {
		t.Errorf("details sections: got %d, want 3", strings.Count(main, "<details"))
	}
	for _, name := range used {
		if strings.Contains(main, "<td>"+name+"</td>") {
			t.Errorf("used location %q should not be listed", name)
		}
	}
	if !strings.Contains(main, "<td>Sweden</td>") {
		t.Error("Sweden is only in Pr. Location 2 and should stay available")
	}

	top := strings.Index(main, `data-priority="Top"`)
	middle := strings.Index(main, `data-priority="Middle"`)
	low := strings.Index(main, `data-priority="Low"`)
	if !(top < middle && middle < low) {
		t.Errorf("tier order: top=%d middle=%d low=%d", top, middle, low)
	}
}

func TestIndex_CachesWithinTTL(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)
	for i := 0; i < 3; i++ {
		if code, _ := getPage(t, c, f.url); code != http.StatusOK {
			t.Fatalf("render %d: status %d", i, code)
		}
	}
	if n := f.upstream.count("/connections.csv"); n != 1 {
		t.Errorf("connections fetched %d times, want 1", n)
	}
	if n := f.upstream.count("/locations.csv"); n != 1 {
		t.Errorf("locations fetched %d times, want 1", n)
	}
}

func TestIndex_UpstreamFailureIs502(t *testing.T) {
	f := newFixture(t)
	f.upstream.set(defaultConnections, http.StatusInternalServerError)

	code, body := getPage(t, newClient(t), f.url)
	if code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", code)
	}
	if !strings.Contains(body, `role="alert"`) {
		t.Error("error block missing")
	}
	if strings.Contains(mainSection(body), "<details") {
		t.Error("no partial results on failure")
	}
	if !strings.Contains(body, `action="/refresh"`) {
		t.Error("sidebar should still render so the user can refresh")
	}
}

func TestIndex_MissingColumnIs502(t *testing.T) {
	f := newFixture(t)
	f.upstream.set("Name,Current location\nann,Berlin\n", 0)

	code, body := getPage(t, newClient(t), f.url)
	if code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", code)
	}
	i := strings.Index(body, `role="alert"`)
	if i < 0 || !strings.Contains(body[i:], "Pr. Location 1") {
		t.Error("error should name the missing column")
	}
}

// cancelledLoader fails every load the way a fetch does when the caller's
// context is cancelled mid-request.
type cancelledLoader struct{}

func (cancelledLoader) Load(_ context.Context, url string) (*sheets.Table, error) {
	return nil, &sheets.FetchError{URL: url, Err: context.Canceled}
}

func TestIndex_ClientGoneWritesNothing(t *testing.T) {
	m := metrics.New()
	reg := session.NewRegistry(time.Hour)
	mgr, err := session.NewManager(config.SessionConfig{CookieName: "locavail_session", IdleTTL: time.Hour}, reg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	srv := web.NewServer(web.Options{
		Service:  availability.NewService(cancelledLoader{}, availability.Sources{LocationsURL: "a", ConnectionsURL: "b"}, m.Render),
		Cache:    sheets.NewCache(cancelledLoader{}, time.Minute, m),
		Sessions: mgr,
		Metrics:  m,
		Hub:      ws.New(),
	})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Body.Len() != 0 {
		t.Errorf("body: got %d bytes, want none", rr.Body.Len())
	}
	if rr.Code == http.StatusBadGateway {
		t.Error("a cancelled request is not an upstream failure")
	}
}

// --- sidebar ----------------------------------------------------------------

func TestAdd_VisibleOnlyInOwnSession(t *testing.T) {
	f := newFixture(t)
	alice, bob := newClient(t), newClient(t)
	getPage(t, alice, f.url)
	getPage(t, bob, f.url)

	code, body := postForm(t, alice, f.url+"/locations", url.Values{
		"location": {"  Atlantis  "},
		"priority": {"Top"},
	})
	if code != http.StatusOK {
		t.Fatalf("add then redirect: status %d", code)
	}
	if !strings.Contains(mainSection(body), "<td>Atlantis</td><td>Top</td>") {
		t.Error("added location should be listed, trimmed, under Top")
	}

	master := catalog.Rebuild()
	master.Add("Atlantis", catalog.Top)
	want := expectedLabels(master.Entries(), used...)[0]
	if !strings.Contains(body, "<summary>"+want+"</summary>") {
		t.Errorf("Top label should be %q", want)
	}

	// Still there on the next render.
	if _, body := getPage(t, alice, f.url); !strings.Contains(mainSection(body), "<td>Atlantis</td>") {
		t.Error("edit lost on re-render")
	}
	if _, body := getPage(t, bob, f.url); strings.Contains(body, "Atlantis") {
		t.Error("edit leaked into another session")
	}
	if got, err := f.metrics.Gather(); err != nil || len(got) == 0 {
		t.Errorf("metrics should be populated: %d families, err %v", len(got), err)
	}
}

func TestAdd_EmptyNameIsNoop(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)
	_, before := getPage(t, c, f.url)

	code, after := postForm(t, c, f.url+"/locations", url.Values{"location": {"   "}, "priority": {"Low"}})
	if code != http.StatusOK {
		t.Fatalf("status: got %d", code)
	}
	if mainSection(before) != mainSection(after) {
		t.Error("blank add should not change the page")
	}
}

func TestAdd_UnknownPriorityRejected(t *testing.T) {
	f := newFixture(t)
	code, _ := postForm(t, newClient(t), f.url+"/locations", url.Values{"location": {"X"}, "priority": {"Urgent"}})
	if code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", code)
	}
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)
	getPage(t, c, f.url)

	_, body := postForm(t, c, f.url+"/locations/remove", url.Values{"location": {"-"}})
	if !strings.Contains(mainSection(body), "<td>Sweden</td>") {
		t.Fatal("the - option must not remove anything")
	}

	_, body = postForm(t, c, f.url+"/locations/remove", url.Values{"location": {"Sweden"}})
	if strings.Contains(body, "Sweden") {
		t.Error("removed location should be gone from the table and the selector")
	}
}

func TestRefresh_RefetchesAndNotifiesClients(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)
	getPage(t, c, f.url)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.url, "http")+"/ws/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck

	var hello ws.Message
	if err := conn.ReadJSON(&hello); err != nil || hello.Event != ws.EventHello {
		t.Fatalf("hello: got %+v, err %v", hello, err)
	}

	f.upstream.set("Current location,Pr. Location 1\nSweden,\n", 0)
	code, body := postForm(t, c, f.url+"/refresh", nil)
	if code != http.StatusOK {
		t.Fatalf("refresh then redirect: status %d", code)
	}
	if strings.Contains(mainSection(body), "<td>Sweden</td>") {
		t.Error("refresh should pick up the new connections sheet")
	}
	if !strings.Contains(mainSection(body), "<td>Berlin</td>") {
		t.Error("Berlin is no longer used after refresh")
	}
	if n := f.upstream.count("/connections.csv"); n != 2 {
		t.Errorf("connections fetched %d times, want 2", n)
	}

	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read refresh: %v", err)
	}
	if msg.Event != ws.EventRefresh || len(msg.Tiers) != 3 {
		t.Errorf("refresh message: got %+v", msg)
	}
}

// --- routing ----------------------------------------------------------------

func TestRoutes(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/refresh", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(tc.method, f.url+tc.path, nil)
		if code, _ := fetch(t, c, req); code != tc.want {
			t.Errorf("%s %s: got %d, want %d", tc.method, tc.path, code, tc.want)
		}
	}
}

func TestAPI_SharesSessionWithPage(t *testing.T) {
	f := newFixture(t)
	c := newClient(t)
	postForm(t, c, f.url+"/locations", url.Values{"location": {"Atlantis"}, "priority": {"Low"}})

	req, _ := http.NewRequest(http.MethodGet, f.url+"/api/v1/locations", nil)
	code, body := fetch(t, c, req)
	if code != http.StatusOK {
		t.Fatalf("status: got %d", code)
	}
	var resp api.LocationsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Mutations) != 1 || resp.Mutations[0].Location != "Atlantis" {
		t.Errorf("mutations: got %+v", resp.Mutations)
	}
}

package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/locavail/locavail/server/internal/config"
)

func TestClient_Load(t *testing.T) {
	var gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(connectionsCSV))
	}))
	defer srv.Close()

	c := NewClient(config.SheetsConfig{})
	tbl, err := c.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len: got %d, want 3", tbl.Len())
	}
	if gotUA != userAgent {
		t.Errorf("User-Agent: got %q, want %q", gotUA, userAgent)
	}
	if gotAuth != "" {
		t.Errorf("Authorization: got %q, want none", gotAuth)
	}
}

func TestClient_BearerToken(t *testing.T) {
	t.Setenv("TEST_SHEETS_TOKEN", "abc")
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("a\n1\n"))
	}))
	defer srv.Close()

	c := NewClient(config.SheetsConfig{Auth: config.SheetsAuth{TokenEnv: "TEST_SHEETS_TOKEN"}})
	if _, err := c.Load(context.Background(), srv.URL); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization: got %q, want Bearer abc", gotAuth)
	}
}

func TestClient_Failures(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "not found", status: http.StatusNotFound, body: "missing", wantStatus: 404},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500},
		{name: "empty body", status: http.StatusOK, body: "", wantStatus: 200},
		{name: "unparseable", status: http.StatusOK, body: "a,b\n\"oops,1\n", wantStatus: 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(config.SheetsConfig{}).Load(context.Background(), srv.URL)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fe.Status != tc.wantStatus {
				t.Errorf("Status: got %d, want %d", fe.Status, tc.wantStatus)
			}
			if fe.URL != srv.URL {
				t.Errorf("URL: got %q, want %q", fe.URL, srv.URL)
			}
		})
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	_, err := NewClient(config.SheetsConfig{}).Load(context.Background(), "http://127.0.0.1:1/export")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Status != 0 {
		t.Errorf("Status: got %d, want 0 for transport failure", fe.Status)
	}
}

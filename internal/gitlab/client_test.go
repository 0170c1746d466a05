package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type recordedRequest struct {
	Method string
	Path   string
	Form   map[string]string
	Token  string
}

func newTestServer(t *testing.T, existing bool) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Form:   form,
			Token:  r.Header.Get("PRIVATE-TOKEN"),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete && !existing:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "404 Not found"})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"name": r.PostForm.Get("name")})
		case r.Method == http.MethodGet && r.URL.EscapedPath() == "/api/v4/projects/e3%2Fe3-asyn":
			json.NewEncoder(w).Encode(Project{Name: "e3-asyn", HTTPURLToRepo: "https://gitlab.example.org/e3/e3-asyn.git"})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestClient_ProtectBranch(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
	}{
		{"replaces existing protection", true},
		{"no existing protection", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newTestServer(t, tt.existing)
			c := NewClient(server.URL+"/", "secret", false, testLogger())

			pb, err := c.ProtectBranch(context.Background(), "e3/e3-asyn", "release/*", DeveloperAccess, MaintainerAccess)
			if err != nil {
				t.Fatalf("ProtectBranch() error = %v", err)
			}
			if pb.Name != "release/*" {
				t.Errorf("ProtectBranch().Name = %q", pb.Name)
			}

			got := requests()
			if len(got) != 2 {
				t.Fatalf("got %d requests, want 2", len(got))
			}
			if got[0].Method != http.MethodDelete || got[0].Path != "/api/v4/projects/e3%2Fe3-asyn/protected_branches/release%2F%2A" {
				t.Errorf("request 0 = %+v", got[0])
			}
			if got[1].Method != http.MethodPost || got[1].Path != "/api/v4/projects/e3%2Fe3-asyn/protected_branches" {
				t.Errorf("request 1 = %+v", got[1])
			}
			if got[1].Form["push_access_level"] != "30" || got[1].Form["merge_access_level"] != "40" {
				t.Errorf("request 1 form = %v", got[1].Form)
			}
			if got[1].Token != "secret" {
				t.Errorf("token = %q, want secret", got[1].Token)
			}
		})
	}
}

func TestClient_ProtectTag(t *testing.T) {
	server, requests := newTestServer(t, false)
	c := NewClient(server.URL, "", false, testLogger())

	pt, err := c.ProtectTag(context.Background(), "e3/e3-asyn", "*")
	if err != nil {
		t.Fatalf("ProtectTag() error = %v", err)
	}
	if pt.Name != "*" {
		t.Errorf("ProtectTag().Name = %q", pt.Name)
	}

	got := requests()
	if len(got) != 2 || got[1].Path != "/api/v4/projects/e3%2Fe3-asyn/protected_tags" {
		t.Errorf("requests = %+v", got)
	}
}

func TestClient_Simulate(t *testing.T) {
	server, requests := newTestServer(t, true)
	c := NewClient(server.URL, "secret", true, testLogger())

	if _, err := c.ProtectBranch(context.Background(), "e3/e3-asyn", "master", DeveloperAccess, DeveloperAccess); err != nil {
		t.Fatalf("ProtectBranch() error = %v", err)
	}
	if _, err := c.ProtectTag(context.Background(), "e3/e3-asyn", "*"); err != nil {
		t.Fatalf("ProtectTag() error = %v", err)
	}
	if n := len(requests()); n != 0 {
		t.Errorf("simulate sent %d requests, want 0", n)
	}
}

func TestClient_RequiresArguments(t *testing.T) {
	c := NewClient("http://unused", "", false, testLogger())
	if _, err := c.ProtectBranch(context.Background(), "", "master", DeveloperAccess, DeveloperAccess); err == nil {
		t.Error("ProtectBranch() with empty project: error = nil")
	}
	if _, err := c.ProtectTag(context.Background(), "e3/e3-asyn", ""); err == nil {
		t.Error("ProtectTag() with empty tag: error = nil")
	}
}

func TestClient_ProjectURL(t *testing.T) {
	server, _ := newTestServer(t, false)
	c := NewClient(server.URL, "", false, testLogger())

	got, err := c.ProjectURL(context.Background(), "e3/e3-asyn")
	if err != nil {
		t.Fatalf("ProjectURL() error = %v", err)
	}
	if got != "https://gitlab.example.org/e3/e3-asyn.git" {
		t.Errorf("ProjectURL() = %q", got)
	}

	if _, err := c.ProjectURL(context.Background(), "e3/missing"); err == nil {
		t.Error("ProjectURL(missing) error = nil")
	}
}

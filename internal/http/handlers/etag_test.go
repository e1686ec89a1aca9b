package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func getMe(t *testing.T, r *gin.Engine, ifNoneMatch string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/get/me", nil)

	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestGetMeETagNotModified(t *testing.T) {
	me := user.User{ID: 3, Username: "bob", Email: "bob@example.com", IsActive: true}
	r := newUsersRouter(&fakeUsersStore{}, &me)

	first := getMe(t, r, "")

	if first.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", first.Code, first.Body.String())
	}

	etag := first.Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	second := getMe(t, r, etag)

	if second.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", second.Code)
	}

	if second.Body.Len() != 0 {
		t.Fatalf("304 must carry no body, got %q", second.Body.String())
	}

	// the validator is still advertised on the 304
	if second.Header().Get("ETag") != etag {
		t.Fatalf("ETag = %q, want %q", second.Header().Get("ETag"), etag)
	}
}

func TestGetMeETagChangesWithPayload(t *testing.T) {
	bob := user.User{ID: 3, Username: "bob", Email: "bob@example.com", IsActive: true}
	r := newUsersRouter(&fakeUsersStore{}, &bob)

	first := getMe(t, r, "")
	etag := first.Header().Get("ETag")

	renamed := bob
	renamed.Username = "robert"
	r2 := newUsersRouter(&fakeUsersStore{}, &renamed)

	// the stale validator must not suppress the changed payload
	w := getMe(t, r2, etag)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a changed payload", w.Code)
	}

	if w.Header().Get("ETag") == etag {
		t.Fatal("different payloads produced the same ETag")
	}
}

func TestGetMeETagIfNoneMatchForms(t *testing.T) {
	me := user.User{ID: 3, Username: "bob", Email: "bob@example.com", IsActive: true}
	r := newUsersRouter(&fakeUsersStore{}, &me)

	etag := getMe(t, r, "").Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	tests := []struct {
		name        string
		ifNoneMatch string
		wantStatus  int
	}{
		{"exact match", etag, http.StatusNotModified},
		{"weak validator", "W/" + etag, http.StatusNotModified},
		{"in a list", `"stale-one", ` + etag, http.StatusNotModified},
		{"wildcard", "*", http.StatusNotModified},
		{"stale validator", `"deadbeef"`, http.StatusOK},
		{"absent", "", http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := getMe(t, r, tt.ifNoneMatch)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

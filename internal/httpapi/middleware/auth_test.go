package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(mw func(http.Handler) http.Handler, key string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdmin_AllowsAdminKey_BlocksPublicKey(t *testing.T) {
	keys := Keys{
		Public: []string{"pub_key"},
		Admin:  []string{"adm_key"},
	}

	if code := hit(RequireAdmin(keys), "adm_key"); code != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", code)
	}
	if code := hit(RequireAdmin(keys), "pub_key"); code != http.StatusForbidden {
		t.Fatalf("public key should be forbidden; got %d", code)
	}
	if code := hit(RequireAdmin(keys), ""); code != http.StatusForbidden {
		t.Fatalf("missing key should be forbidden; got %d", code)
	}
}

func TestRequireRead_EitherKeyPasses(t *testing.T) {
	keys := Keys{
		Public: []string{"pub_key"},
		Admin:  []string{"adm_key"},
	}

	if code := hit(RequireRead(keys), "pub_key"); code != http.StatusOK {
		t.Fatalf("public key should pass; got %d", code)
	}
	if code := hit(RequireRead(keys), "adm_key"); code != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", code)
	}
	if code := hit(RequireRead(keys), "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("bad key should be unauthorized; got %d", code)
	}
}

func TestAuth_DisabledWithoutKeys(t *testing.T) {
	if code := hit(RequireRead(Keys{}), ""); code != http.StatusOK {
		t.Fatalf("read with no keys configured should be open; got %d", code)
	}
	if code := hit(RequireAdmin(Keys{}), ""); code != http.StatusOK {
		t.Fatalf("admin with no keys configured should be open; got %d", code)
	}
}

func TestPresentedKey_BearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer adm_key")
	if got := presentedKey(req); got != "adm_key" {
		t.Fatalf("presentedKey = %q", got)
	}
}

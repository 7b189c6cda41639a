package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/utils"
)

const testSecret = "test-secret"

// echoContext builds a request/recorder pair for middleware tests.
func echoContext(t *testing.T, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func bearerFor(t *testing.T, userID, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, userID, role, 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + at.Token
}

func TestJWTAuthValidToken(t *testing.T) {
	c, _ := echoContext(t, bearerFor(t, "teacher@school.be", "TEACHER"))

	called := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "teacher@school.be" {
			t.Fatalf("user_id = %v", c.Get("user_id"))
		}
		if c.Get("role") != "TEACHER" {
			t.Fatalf("role = %v", c.Get("role"))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next handler not invoked")
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	c, rec := echoContext(t, "")

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("next handler must not run")
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", "u@school.be", "STUDENT", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	c, rec := echoContext(t, "Bearer "+at.Token)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("next handler must not run")
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestOptionalJWTAuthAnonymous(t *testing.T) {
	c, _ := echoContext(t, "")

	h := OptionalJWTAuth(testSecret)(func(c echo.Context) error {
		if c.Get("user_id") != nil {
			t.Fatalf("anonymous request must not carry a user_id, got %v", c.Get("user_id"))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestOptionalJWTAuthWithToken(t *testing.T) {
	c, _ := echoContext(t, bearerFor(t, "student@school.be", "STUDENT"))

	h := OptionalJWTAuth(testSecret)(func(c echo.Context) error {
		if c.Get("user_id") != "student@school.be" {
			t.Fatalf("user_id = %v", c.Get("user_id"))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestOptionalJWTAuthInvalidTokenStaysAnonymous(t *testing.T) {
	c, rec := echoContext(t, "Bearer not-a-jwt")

	h := OptionalJWTAuth(testSecret)(func(c echo.Context) error {
		if c.Get("user_id") != nil {
			t.Fatal("invalid token must not inject claims")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	c, _ := echoContext(t, "")
	c.Set("role", "TEACHER")

	called := false
	h := RequireRole(model.RoleAdmin, model.RoleTeacher)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("allowed role was rejected")
	}
}

func TestRequireRoleRejects(t *testing.T) {
	cases := []struct {
		name string
		role interface{}
	}{
		{"wrong role", "STUDENT"},
		{"unknown role", "OWNER"},
		{"missing role", nil},
	}
	for _, tc := range cases {
		c, rec := echoContext(t, "")
		if tc.role != nil {
			c.Set("role", tc.role)
		}
		h := RequireRole(model.RoleAdmin, model.RoleTeacher)(func(c echo.Context) error {
			t.Fatalf("%s: next handler must not run", tc.name)
			return nil
		})
		if err := h(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: status = %d, want 403", tc.name, rec.Code)
		}
	}
}

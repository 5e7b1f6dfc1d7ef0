package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"call-cascade/internal/auth"

	"github.com/gin-gonic/gin"
)

func roleRouter(allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAnyRole(allowed...), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func getWithRole(router *gin.Engine, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if role != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), "u1", role))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAnyRole_AllowsListedRole(t *testing.T) {
	if w := getWithRole(roleRouter(RoleOperator), RoleOperator); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAnyRole_AdminBypasses(t *testing.T) {
	if w := getWithRole(roleRouter(RoleOperator), RoleAdmin); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}

func TestRequireAnyRole_DeniesOtherRole(t *testing.T) {
	if w := getWithRole(roleRouter(RoleOperator), "viewer"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireAnyRole_RequiresIdentity(t *testing.T) {
	if w := getWithRole(roleRouter(RoleOperator), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

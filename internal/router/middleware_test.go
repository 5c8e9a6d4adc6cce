package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const testJWTSecret = "router-test-secret-0123456789abcdef"

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{"wildcard", "https://a.example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials echoes origin", "https://a.example.com", []string{"*"}, true, "https://a.example.com"},
		{"exact match", "https://a.example.com", []string{"https://a.example.com"}, false, "https://a.example.com"},
		{"case insensitive match", "https://A.Example.com", []string{"https://a.example.com"}, false, "https://A.Example.com"},
		{"no match", "https://evil.example.com", []string{"https://a.example.com"}, false, ""},
		{"empty origin", "", []string{"https://a.example.com"}, false, ""},
		{"empty allowlist", "https://a.example.com", nil, false, ""},
	}
	for _, c := range cases {
		if got := resolveAllowedOrigin(c.origin, c.allowed, c.allowCredentials); got != c.want {
			t.Fatalf("%s: resolveAllowedOrigin = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	// 透传调用方提供的请求 ID
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set(requestIDHeader, "req-12345")
	engine.ServeHTTP(recorder, request)
	if recorder.Body.String() != "req-12345" {
		t.Fatalf("expected propagated request id, got %q", recorder.Body.String())
	}
	if recorder.Header().Get(requestIDHeader) != "req-12345" {
		t.Fatalf("expected request id echoed in header")
	}

	// 未提供时自动生成
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if recorder.Body.String() == "" {
		t.Fatalf("expected generated request id")
	}
}

func setupAuthTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func issueTestToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := service.UserJWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		ShopID: user.ShopID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func newAuthTestEngine(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me",
		UserJWTAuthMiddleware(testJWTSecret, repository.NewUserRepository(db)),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id": c.GetUint("user_id"),
				"role":    c.GetString("user_role"),
				"shop_id": c.GetUint("shop_id"),
			})
		},
	)
	return engine
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	db := setupAuthTestDB(t, "router_auth")
	user := models.User{Email: "buyer@example.com", PasswordHash: "x", Role: constants.UserRoleCustomer, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	engine := newAuthTestEngine(db)

	doRequest := func(authorization string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authorization != "" {
			request.Header.Set("Authorization", authorization)
		}
		engine.ServeHTTP(recorder, request)
		return recorder
	}

	if recorder := doRequest(""); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", recorder.Code)
	}
	if recorder := doRequest("Basic abc"); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("bad scheme: expected 401, got %d", recorder.Code)
	}
	if recorder := doRequest("Bearer not-a-token"); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", recorder.Code)
	}

	token := issueTestToken(t, &user)
	recorder := doRequest("Bearer " + token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	// 账号停用后令牌失效
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if recorder := doRequest("Bearer " + token); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("disabled user: expected 401, got %d", recorder.Code)
	}
}

func TestUserJWTAuthMiddlewareMissingSecret(t *testing.T) {
	db := setupAuthTestDB(t, "router_auth_nosecret")
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", UserJWTAuthMiddleware("", repository.NewUserRepository(db)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when secret missing, got %d", recorder.Code)
	}
}

func TestShopStaffAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	newEngine := func(role string, shopID uint, withContext bool) *gin.Engine {
		engine := gin.New()
		engine.GET("/shop",
			func(c *gin.Context) {
				if withContext {
					c.Set("user_role", role)
					c.Set("shop_id", shopID)
				}
				c.Next()
			},
			ShopStaffAuthMiddleware(),
			func(c *gin.Context) {
				c.Status(http.StatusOK)
			},
		)
		return engine
	}

	run := func(engine *gin.Engine) int {
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/shop", nil))
		return recorder.Code
	}

	if code := run(newEngine(constants.UserRoleShopStaff, 7, true)); code != http.StatusOK {
		t.Fatalf("staff with shop: expected 200, got %d", code)
	}
	if code := run(newEngine(constants.UserRoleCustomer, 7, true)); code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", code)
	}
	if code := run(newEngine(constants.UserRoleShopStaff, 0, true)); code != http.StatusForbidden {
		t.Fatalf("staff without shop: expected 403, got %d", code)
	}
	if code := run(newEngine("", 0, false)); code != http.StatusForbidden {
		t.Fatalf("missing context: expected 403, got %d", code)
	}
}

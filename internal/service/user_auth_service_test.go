package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/velamall/internal/config"
	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func setupUserAuthDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newUserAuthServiceForTest(db *gorm.DB) *UserAuthService {
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "unit-test-secret-key-0123456789abcdef"
	cfg.UserJWT.ExpireHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupUserAuthDB(t, "user_auth_register")
	svc := newUserAuthServiceForTest(db)

	user, token, expiresAt, err := svc.Register("  Buyer@Example.COM ", "Passw0rd!", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "buyer@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Role != constants.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", user.Role)
	}
	if user.Nickname != "buyer" {
		t.Fatalf("expected nickname from email local part, got %s", user.Nickname)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("unexpected token issue: token=%q expires=%s", token, expiresAt)
	}
	if user.PasswordHash == "Passw0rd!" {
		t.Fatalf("password must be hashed")
	}

	if _, _, _, err := svc.Register("buyer@example.com", "Passw0rd!", ""); err != ErrUserEmailExists {
		t.Fatalf("expected ErrUserEmailExists, got %v", err)
	}

	logged, _, _, err := svc.Login("buyer@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected same user, got %d vs %d", logged.ID, user.ID)
	}
	if _, _, _, err := svc.Login("buyer@example.com", "wrong-pass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "Passw0rd!"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	db := setupUserAuthDB(t, "user_auth_policy")
	svc := newUserAuthServiceForTest(db)

	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoNumbersHere"} {
		if _, _, _, err := svc.Register("buyer@example.com", password, ""); err != ErrPasswordTooWeak {
			t.Fatalf("password %q: expected ErrPasswordTooWeak, got %v", password, err)
		}
	}
	if _, _, _, err := svc.Register("not-an-email", "Passw0rd!", ""); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad email, got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	db := setupUserAuthDB(t, "user_auth_disabled")
	svc := newUserAuthServiceForTest(db)

	if _, _, _, err := svc.Register("buyer@example.com", "Passw0rd!", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := db.Model(&models.User{}).Where("email = ?", "buyer@example.com").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("buyer@example.com", "Passw0rd!"); err != ErrUserDisabled {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestUserJWTRoundTrip(t *testing.T) {
	db := setupUserAuthDB(t, "user_auth_jwt")
	svc := newUserAuthServiceForTest(db)

	user := &models.User{ID: 42, Email: "staff@example.com", Role: constants.UserRoleShopStaff, ShopID: 7}
	token, _, err := svc.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("GenerateUserJWT error: %v", err)
	}
	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("ParseUserJWT error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != constants.UserRoleShopStaff || claims.ShopID != 7 {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("expected error for tampered token")
	}

	// 仅接受 HS256 签名
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, UserJWTClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := other.SignedString([]byte("unit-test-secret-key-0123456789abcdef"))
	if err != nil {
		t.Fatalf("sign HS512 token failed: %v", err)
	}
	if _, err := svc.ParseUserJWT(signed); err == nil {
		t.Fatalf("expected error for HS512-signed token")
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"garagehub/internal/model"
	"garagehub/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid tenant or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles tenant authentication
type AuthService struct {
	tenantRepo repository.TenantRepo
	jwtSecret  []byte
}

// NewAuthService creates a new auth service
func NewAuthService(tenantRepo repository.TenantRepo, jwtSecret string) *AuthService {
	return &AuthService{
		tenantRepo: tenantRepo,
		jwtSecret:  []byte(jwtSecret),
	}
}

// Login validates tenant credentials and returns a tenant-scoped token.
// The admin credential grants the admin role; the staff credential
// grants staff.
func (s *AuthService) Login(ctx context.Context, slug, password string) (*model.LoginResponse, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrInvalidCredentials
	}

	role := model.RoleStaff
	if tenant.AdminPasswordHash != "" &&
		bcrypt.CompareHashAndPassword([]byte(tenant.AdminPasswordHash), []byte(password)) == nil {
		role = model.RoleAdmin
	} else if err := bcrypt.CompareHashAndPassword([]byte(tenant.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &model.TenantClaims{
		TenantID: tenant.ID,
		Slug:     tenant.Slug,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    tokenString,
		TenantID: tenant.ID,
		Name:     tenant.Name,
		Role:     role,
	}, nil
}

// ValidateToken validates a tenant JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.TenantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.TenantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashPassword produces a bcrypt hash for tenant provisioning
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

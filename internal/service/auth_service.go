package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid admin role")
)

// Claims extends JWT standard claims with the admin's role and permissions.
type Claims struct {
	jwt.RegisteredClaims
	AdminID     string   `json:"admin_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission reports whether the token grants code.
func (c *Claims) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// AuthService handles admin login and JWT issuance.
type AuthService struct {
	cfg    *config.Config
	admins AdminStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, admins AdminStore) *AuthService {
	return &AuthService{cfg: cfg, admins: admins}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials and returns a signed token for the admin.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AdminLoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := s.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}

	perms := model.PermissionsForRole(admin.Role)
	token, err := s.GenerateAdminToken(admin.ID, admin.Role, perms)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AdminLoginResponse{Token: token, Admin: *admin, Permissions: perms}, nil
}

// GetAdmin returns the admin with id.
func (s *AuthService) GetAdmin(ctx context.Context, id string) (*model.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// CreateAdmin hashes the password and stores a new admin.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, role, password string) (*model.Admin, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	admin := &model.Admin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// GenerateAdminToken creates a JWT for an admin with permissions embedded.
func (s *AuthService) GenerateAdminToken(adminID, role string, permissions []string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		AdminID:     adminID,
		Role:        role,
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.AdminID == "" {
		return nil, errors.New("token has no admin id")
	}

	return claims, nil
}

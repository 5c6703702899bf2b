package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajatc17/india-ecom/config"
	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// AuthService handles registration, login and token verification, plus the
// account-scoped resources (profile, addresses, wishlist).
type AuthService struct {
	store  *store.Store
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:  store,
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// Claims is the JWT payload. Role is embedded so admin routes can be
// gated without a user lookup per request.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult bundles the signed token with the authenticated user.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account. Emails are stored lowercased and must
// be unique.
func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if len(req.Password) < 8 {
		return nil, Validationf("password must be at least 8 characters")
	}

	if _, err := as.store.GetUserByEmail(ctx, email); err == nil {
		util.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleUser,
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	util.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	as.logger.Info("User registered", zap.String("user_id", user.ID))
	return as.issueToken(user)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the same error so the response does not leak which
// accounts exist.
func (as *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	user, err := as.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		util.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	util.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return as.issueToken(user)
}

// EmailTaken reports whether an account already exists for the email.
func (as *AuthService) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := as.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (as *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	expires := time.Now().Add(time.Duration(as.cfg.TokenTTLHours) * time.Hour)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResult{Token: signed, ExpiresAt: expires, User: user}, nil
}

// VerifyToken parses and validates a bearer token, returning its claims.
func (as *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Profile returns the user with address book and wishlist attached.
func (as *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := as.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	addrs, err := as.store.GetAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Addresses = addrs

	wishlist, err := as.store.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Wishlist = wishlist
	return user, nil
}

// AddAddress appends a shipping address. The first address becomes the
// default automatically.
func (as *AuthService) AddAddress(ctx context.Context, userID string, addr *models.Address) (*models.Address, error) {
	if addr.Line1 == "" || addr.City == "" || addr.State == "" || addr.Pincode == "" {
		return nil, Validationf("address requires line1, city, state and pincode")
	}

	existing, err := as.store.GetAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	addr.ID = uuid.NewString()
	addr.UserID = userID
	if len(existing) == 0 {
		addr.IsDefault = true
	}
	if err := as.store.AddAddress(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// RemoveAddress deletes one address from the user's book.
func (as *AuthService) RemoveAddress(ctx context.Context, userID, addressID string) error {
	return as.store.RemoveAddress(ctx, userID, addressID)
}

// Wishlist returns the user's wishlist products.
func (as *AuthService) Wishlist(ctx context.Context, userID string) ([]models.Product, error) {
	return as.store.GetWishlist(ctx, userID)
}

// AddToWishlist adds a product to the wishlist. Adding twice is a no-op.
func (as *AuthService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if _, err := as.store.GetProductByID(ctx, productID); err != nil {
		return err
	}
	return as.store.AddToWishlist(ctx, userID, productID)
}

// RemoveFromWishlist removes a product from the wishlist.
func (as *AuthService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return as.store.RemoveFromWishlist(ctx, userID, productID)
}

// Valid user roles.
var validRoles = map[string]bool{
	models.RoleUser:  true,
	models.RoleAdmin: true,
}

// SetRole changes a user's role, for admin user management.
func (as *AuthService) SetRole(ctx context.Context, userID, role string) (*models.User, error) {
	if !validRoles[role] {
		return nil, Validationf("unknown role %q", role)
	}
	if err := as.store.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return as.store.GetUserByID(ctx, userID)
}

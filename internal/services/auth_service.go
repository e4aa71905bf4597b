package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/config"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, rtRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: rtRepo,
		cfg:              cfg,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token        string                 `json:"token"`
	RefreshToken string                 `json:"refresh_token"`
	Profile      models.ProfileResponse `json:"profile"`
}

var errInvalidCredentials = fmt.Errorf("%w: credenciales inválidas", ErrUnauthorized)

// Login authenticates by email or identity document. Voters log in with the
// document and the PIN they received at registration.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	// Find user by email or document
	user, err := s.findUser(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, errInvalidCredentials
	}

	if user.Profile == nil {
		return nil, fmt.Errorf("%w: la cuenta no tiene un perfil asociado", ErrUnauthorized)
	}

	// Verify password
	if !VerifyPassword(password, user.EncryptedPassword) {
		return nil, errInvalidCredentials
	}

	// Generate tokens
	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Update sign-in tracking
	_ = s.userRepo.TouchSignIn(ctx, user.ID, time.Now())
	return result, nil
}

func (s *AuthService) findUser(ctx context.Context, identifier string) (*models.User, error) {
	if identifier == "" {
		return nil, ErrNotFound
	}
	if strings.Contains(identifier, "@") {
		return s.userRepo.FindByEmail(ctx, identifier)
	}
	profile, err := s.profileRepo.FindByDocument(ctx, identifier)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RefreshToken validates a refresh token and returns new tokens
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error) {
	// Find refresh token
	rt, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: token inválido", ErrUnauthorized)
	}

	// Check if expired
	if rt.IsExpired() {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, fmt.Errorf("%w: token expirado", ErrUnauthorized)
	}

	// Find user
	user, err := s.userRepo.FindByID(ctx, rt.UserID)
	if err != nil || user.Profile == nil {
		return nil, fmt.Errorf("%w: usuario no encontrado", ErrUnauthorized)
	}

	// Delete old refresh token
	_ = s.refreshTokenRepo.Delete(ctx, refreshToken)

	return s.issueTokens(ctx, user)
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.Delete(ctx, refreshToken)
}

// Me returns the caller's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "perfil no encontrado")
	}
	return profile, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, errors.New("error al generar token")
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, errors.New("error al generar refresh token")
	}

	profile := *user.Profile
	profile.User = user
	return &LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		Profile:      profile.ToResponse(),
	}, nil
}

// generateJWT creates a new JWT token for a user
func (s *AuthService) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Profile.Role,
		"exp":     now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// generateRefreshToken creates a new refresh token
func (s *AuthService) generateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	// Generate random token
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(bytes)

	// Set expiration (30 days)
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	rt := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: &expiresAt,
	}

	if err := s.refreshTokenRepo.Create(ctx, rt); err != nil {
		return "", err
	}

	return token, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

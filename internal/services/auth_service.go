package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"greencart/internal/models"
	"greencart/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Token roles.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserExists         = errors.New("User already exists")
)

// Claims is the decoded content of a session token.
type Claims struct {
	Subject string // user id, or the seller email
	Role    string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo       repositories.UserRepository
	jwtSecret      []byte
	tokenDurat     time.Duration // Duration for which JWT is valid
	sellerEmail    string
	sellerPassword string
	log            zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret, sellerEmail, sellerPassword string, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		jwtSecret:      []byte(jwtSecret),
		tokenDurat:     7 * 24 * time.Hour,
		sellerEmail:    sellerEmail,
		sellerPassword: sellerPassword,
		log:            log.With().Str("component", "auth").Logger(),
	}
}

// TokenDuration is how long issued tokens stay valid.
func (s *AuthService) TokenDuration() time.Duration {
	return s.tokenDurat
}

// RegisterUser hashes the password, saves the user and returns a session token.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) (string, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return "", ErrUserExists
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.GenerateToken(user.ID, RoleUser)
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID, RoleUser)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginSeller checks the configured seller credentials.
func (s *AuthService) LoginSeller(email, password string) (string, error) {
	if s.sellerPassword == "" {
		return "", ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.sellerEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.sellerPassword)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken(s.sellerEmail, RoleSeller)
}

// GetUser returns the user behind a session, without its password hash.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// GenerateToken signs an HS256 token for subject with the given role.
func (s *AuthService) GenerateToken(subject, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(s.tokenDurat).Unix(),
		"iat":  now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, fmt.Errorf("invalid token: missing subject or role")
	}
	return &Claims{Subject: sub, Role: role}, nil
}

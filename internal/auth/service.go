package auth

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eventtrackpro/eventtrack-backend/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Service interface {
	Login(req LoginRequest) (*TokenPair, *UserResponse, error)
	Refresh(refreshToken string) (*TokenPair, error)
	GetUserByID(userID uint) (User, error)
	SeedAdminUser(username, password string) error
}

type service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{repo: repo, cfg: cfg}
}

// ===========================
// 🔐 Login & Token Issuance
// ===========================

func (s *service) Login(req LoginRequest) (*TokenPair, *UserResponse, error) {
	user, err := s.repo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.Active {
		return nil, nil, ErrUserInactive
	}

	if !s.verifyPassword(user, req.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	resp := &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	return pair, resp, nil
}

// verifyPassword checks the bcrypt hash when present, otherwise falls
// back to the legacy plaintext column and upgrades the account in place.
func (s *service) verifyPassword(user *User, password string) bool {
	if user.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	}

	if user.Password == "" || user.Password != password {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err == nil {
		user.PasswordHash = string(hash)
		user.Password = ""
		if err := s.repo.Update(user); err != nil {
			log.Printf("⚠️ Failed to upgrade legacy password for user %s: %v", user.Username, err)
		}
	}
	return true
}

func (s *service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.FindByID(uint(userID))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	return s.issueTokens(&user)
}

func (s *service) GetUserByID(userID uint) (User, error) {
	return s.repo.FindByID(userID)
}

func (s *service) issueTokens(user *User) (*TokenPair, error) {
	access, err := s.signToken(user, s.cfg.JWTAccessSecret, time.Duration(s.cfg.JWTAccessTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user, s.cfg.JWTRefreshSecret, time.Duration(s.cfg.JWTRefreshTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) signToken(user *User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *service) parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ===========================
// 🌱 Admin Seeding
// ===========================

// SeedAdminUser creates the initial admin account when the users table
// is empty so a fresh deployment can be logged into.
func (s *service) SeedAdminUser(username, password string) error {
	count, err := s.repo.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}
	if err := s.repo.Create(admin); err != nil {
		return err
	}
	log.Printf("✅ Seeded initial admin user: %s", username)
	return nil
}

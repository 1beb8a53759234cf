package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Token purposes. A token is only accepted where its purpose matches: an
// access token cannot reset a password and a reset token cannot call the API.
const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

// Claims is the JWT payload issued by the service.
type Claims struct {
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenPair is the response of a successful login.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        user.Role `json:"role"`
	UserID      string    `json:"user_id"`
}

// Mailer delivers transactional email. The HTTP implementation lives in the
// mail package; tests inject a recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Service issues and verifies JWTs and runs the password reset flow.
type Service struct {
	users    storage.UserStore
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
	mailer   Mailer
	resetURL string
	log      *logger.Logger
}

// New constructs an auth service.
func New(users storage.UserStore, secret string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: 24 * time.Hour,
		resetTTL: 30 * time.Minute,
		log:      log,
	}
}

// SetTokenTTL overrides the access token lifetime.
func (s *Service) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		s.tokenTTL = ttl
	}
}

// AttachMailer wires the outbound mailer used by the password reset flow.
// resetURL is the base of the reset link placed in the email.
func (s *Service) AttachMailer(m Mailer, resetURL string) {
	s.mailer = m
	s.resetURL = strings.TrimRight(resetURL, "/")
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies credentials and returns an access token.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, svcerr.Unauthorized("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, svcerr.Unauthorized("incorrect email or password")
	}
	if !u.IsActive {
		return TokenPair{}, svcerr.Unauthorized("account is disabled")
	}

	token, err := s.IssueToken(u, PurposeAccess, s.tokenTTL)
	if err != nil {
		return TokenPair{}, svcerr.Internal("issue token", err)
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return TokenPair{AccessToken: token, TokenType: "bearer", Role: u.Role, UserID: u.ID}, nil
}

// IssueToken signs a purpose-tagged JWT for the given user.
func (s *Service) IssueToken(u user.User, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role:    string(u.Role),
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate verifies an access token and loads its principal.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (user.User, error) {
	claims, err := s.verify(tokenString, PurposeAccess)
	if err != nil {
		return user.User{}, err
	}

	u, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		return user.User{}, svcerr.Unauthorized("user no longer exists")
	}
	if !u.IsActive {
		return user.User{}, svcerr.Unauthorized("account is disabled")
	}
	return u, nil
}

func (s *Service) verify(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, svcerr.InvalidToken(err)
	}
	if claims.Purpose != purpose {
		return nil, svcerr.Unauthorized("token not valid for this operation")
	}
	if claims.Subject == "" {
		return nil, svcerr.Unauthorized("token has no subject")
	}
	return claims, nil
}

// ForgotPassword sends a reset link when the address belongs to a user. The
// result is identical either way so the endpoint cannot be used to probe for
// registered addresses.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.WithField("email", email).Info("password reset requested for unknown email")
		return nil
	}

	token, err := s.IssueToken(u, PurposePasswordReset, s.resetTTL)
	if err != nil {
		return svcerr.Internal("issue reset token", err)
	}

	if s.mailer == nil {
		s.log.Warn("no mailer configured; dropping password reset email")
		return nil
	}

	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Use the link below to reset your password. It expires in %d minutes.</p><p><a href=%q>Reset password</a></p>",
		u.FullName, int(s.resetTTL.Minutes()), link)
	if err := s.mailer.Send(ctx, u.Email, "Reset your password", body); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("send password reset email")
		return nil
	}

	s.log.WithField("user_id", u.ID).Info("password reset email sent")
	return nil
}

// ResetPassword verifies a reset token and stores a new password hash.
func (s *Service) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < 8 {
		return svcerr.Validation("password must be at least 8 characters")
	}

	claims, err := s.verify(tokenString, PurposePasswordReset)
	if err != nil {
		return err
	}

	u, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		return svcerr.Unauthorized("user no longer exists")
	}
	if !u.IsActive {
		return svcerr.Unauthorized("account is disabled")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return svcerr.Internal("hash password", err)
	}
	u.PasswordHash = hash

	if _, err := s.users.UpdateUser(ctx, u); err != nil {
		return svcerr.Internal("update password", err)
	}

	s.log.WithField("user_id", u.ID).Info("password reset")
	return nil
}

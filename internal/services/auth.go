package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"votemate/internal/apperr"
	"votemate/internal/models"
	"votemate/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Identity is the caller resolved from an identity token. It never carries the password hash.
type Identity struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func identityOf(u *models.User) *Identity {
	return &Identity{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// RegisterInput is a registration command after transport-level binding.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *Identity
	Token string
}

type AuthService struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// Register creates a user with a unique username and email and returns a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := utils.CleanText(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleUser
	}

	var details []apperr.FieldError
	if username == "" {
		details = append(details, apperr.FieldError{Field: "username", Message: "username is required"})
	}
	if email == "" {
		details = append(details, apperr.FieldError{Field: "email", Message: "email is required"})
	} else if !emailPattern.MatchString(email) {
		details = append(details, apperr.FieldError{Field: "email", Message: "invalid email format"})
	}
	if len(in.Password) < minPasswordLen {
		details = append(details, apperr.FieldError{Field: "password", Message: "password must be at least 6 characters long"})
	}
	if !models.ValidRole(role) {
		details = append(details, apperr.FieldError{Field: "role", Message: "role must be user or admin"})
	}
	if len(details) > 0 {
		return nil, apperr.Validation(details[0].Message, details...)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("An error occurred during registration", err)
	}
	if count > 0 {
		return nil, duplicateUser("User with this email already exists")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperr.Internal("An error occurred during registration", err)
	}
	if count > 0 {
		return nil, duplicateUser("Username is already taken")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("An error occurred during registration", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration; the unique indexes decide.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateUser("Username or email is already taken")
		}
		return nil, apperr.Internal("An error occurred during registration", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.issue(&user)
}

// Login checks the password against the stored hash. Unknown email and wrong password
// produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("An error occurred during login", err)
	}
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Authentication("Invalid credentials")
	}

	return s.issue(&user)
}

// Resolve maps a token to the identity of an existing user.
func (s *AuthService) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Authentication("Not authorized, no token provided")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Authentication("Not authorized, invalid token")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperr.Authentication("Not authorized, invalid token")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authentication("Not authorized, user not found")
		}
		return nil, apperr.Internal("Server error during authentication", err)
	}
	return identityOf(&user), nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", fmt.Errorf("user %s: %w", user.ID, err))
	}
	return &AuthResult{User: identityOf(user), Token: token}, nil
}

// Duplicate registrations answer 400 like other rejected sign-up input.
func duplicateUser(msg string) *apperr.Error {
	return apperr.Conflict(msg).WithStatus(http.StatusBadRequest)
}

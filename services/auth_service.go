package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"driveclone/models"
	"driveclone/repository"
	"driveclone/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 6

	msgFieldsRequired   = "All fields are required"
	msgUserExists       = "User already exists with this email"
	msgInvalidLogin     = "Invalid credentials"
	msgPasswordMismatch = "Passwords do not match"
)

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
	cost      int
	logger    *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		cost:      bcryptCost,
		logger:    logger,
	}
}

// Signup registers a new account and returns its id.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (primitive.ObjectID, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateSignup(&in); err != nil {
		return primitive.NilObjectID, invalid(utils.ValidationMessage(err))
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return primitive.NilObjectID, invalid(msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return primitive.NilObjectID, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return primitive.NilObjectID, invalid(msgUserExists)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.Hex()))
	return user.ID, nil
}

func validateSignup(in *SignupInput) error {
	required := validation.Required.Error(msgFieldsRequired)
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, required),
		validation.Field(&in.Email, required, is.EmailFormat.Error("Invalid email format")),
		validation.Field(&in.Password, required,
			validation.Length(minPasswordLength, 0).Error("Password must be at least 6 characters")),
		validation.Field(&in.ConfirmPassword, required, validation.In(in.Password).Error(msgPasswordMismatch)),
	)
}

// Signin checks credentials and issues a session token.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &UnauthorizedError{Message: msgInvalidLogin}
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &UnauthorizedError{Message: msgInvalidLogin}
	}

	token, err := utils.GenerateJWTToken(user, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

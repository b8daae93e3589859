package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/task-service/internal/constants"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists      = apierrors.New(apierrors.KindAlreadyExists, "user is already registered")
	ErrInvalidCredentials     = apierrors.New(apierrors.KindUnauthenticated, "invalid email or password")
	ErrAuthenticationRequired = apierrors.New(apierrors.KindUnauthenticated, "authentication required")
	ErrUnknownTokenSubject    = apierrors.New(apierrors.KindUnauthenticated, "token subject does not exist")
	ErrUsernameRequired       = apierrors.New(apierrors.KindValidation, "username can't be blank")
	ErrInvalidEmail           = apierrors.New(apierrors.KindValidation, "incorrect email format")
	ErrPasswordTooShort       = apierrors.New(apierrors.KindValidation, fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	ErrPasswordTooLong        = apierrors.New(apierrors.KindValidation, fmt.Sprintf("password must be at most %d bytes", constants.MaxPasswordBytes))
	ErrUserNotFound           = apierrors.New(apierrors.KindNotFound, "user not found")
)

// dummyPassword is hashed once so logins for unknown emails cost the same as real ones.
const dummyPassword = "task-service-dummy-password"

// AuthService handles registration, login and token resolution.
type AuthService struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	tokens    *TokenService
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens *TokenService) (*AuthService, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummyHash,
	}, nil
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is an authenticated user together with a freshly issued token.
type AuthResult struct {
	User  *models.User
	Token string
}

// Register creates a new user and issues a token bound to the user's email.
// Duplicate email or username is rejected before any hashing work is done.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if username == "" {
		return nil, ErrUsernameRequired
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can win the race between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies credentials and returns the authenticated user with a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.hasher.Verify(s.dummyHash, input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate validates a bearer token and resolves its subject to a stored user.
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTokenSubject
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes the principal's user together with its tasks and comments.
// It returns the user as it was before deletion.
func (s *AuthService) DeleteAccount(p models.Principal) (*models.User, error) {
	if p.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	user, err := s.GetUser(p.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(models.PrincipalOf(user))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validatePassword(password string) error {
	if len(strings.TrimSpace(password)) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

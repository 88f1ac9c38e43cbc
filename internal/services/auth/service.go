package auth

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
	"tutorlink/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Register(email, name, password, role string) (*models.User, error)
	Login(email, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(userID uint) error
	GetUserByID(userID uint) (*models.User, error)
	GetUserTokenVersion(userID uint) (int, error)
}

type service struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

func NewService(userRepo repositories.UserRepository, logger *zap.Logger) Service {
	return &service{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *service) Register(email, name, password, role string) (*models.User, error) {
	if email == "" || name == "" {
		return nil, apperr.Validation("email and name are required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if !models.IsRegisterableRole(role) {
		return nil, apperr.Validation("role must be student or tutor")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, apperr.Validation("email already registered")
		}
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

func (s *service) Login(email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug("login failed", zap.Uint("user_id", user.ID))
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, "", "", err
	}

	user.LastLoginAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Warn("failed to record login time", zap.Error(err))
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
}

// Logout bumps the token version, invalidating every outstanding token.
func (s *service) Logout(userID uint) error {
	return s.userRepo.IncrementTokenVersion(userID)
}

func (s *service) GetUserByID(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *service) GetUserTokenVersion(userID uint) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

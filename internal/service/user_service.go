package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
	"github.com/yourusername/spectra-quiz/internal/service/quizmanager"
)

// MinPasswordLength - минимальная длина пароля для игроков с аккаунтом
const MinPasswordLength = 6

// UserService предоставляет методы для работы с игроками
type UserService struct {
	userRepo      repository.UserRepository
	minNameLength int
}

// NewUserService создает новый сервис игроков
func NewUserService(userRepo repository.UserRepository, minNameLength int) *UserService {
	if minNameLength <= 0 {
		minNameLength = quizmanager.DefaultMinNameLength
	}
	return &UserService{
		userRepo:      userRepo,
		minNameLength: minNameLength,
	}
}

// Register создает игрока. Email и пароль необязательны, но пароль требуется, если указан email.
// Занятое имя или email - apperrors.ErrConflict.
func (s *UserService) Register(ctx context.Context, reg quizmanager.Registration) (*entity.User, error) {
	name := strings.TrimSpace(reg.Name)
	if utf8.RuneCountInString(name) < s.minNameLength {
		return nil, fmt.Errorf("name must be at least %d characters: %w", s.minNameLength, apperrors.ErrValidation)
	}

	user := &entity.User{Name: name}

	email := strings.TrimSpace(reg.Email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, fmt.Errorf("invalid email %q: %w", email, apperrors.ErrValidation)
		}
		if len(reg.Password) < MinPasswordLength {
			return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, apperrors.ErrValidation)
		}
		if reg.Password != reg.ConfirmPassword {
			return nil, fmt.Errorf("passwords do not match: %w", apperrors.ErrValidation)
		}
		user.Email = &email
		user.Password = reg.Password
	}

	if _, err := s.userRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("name %q is already taken: %w", name, apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[UserService] Ошибка проверки имени '%s': %v", name, err)
		return nil, fmt.Errorf("failed to check name: %v: %w", err, apperrors.ErrPersistence)
	}

	if email != "" {
		if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
			return nil, fmt.Errorf("email %q is already registered: %w", email, apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[UserService] Ошибка проверки email '%s': %v", email, err)
			return nil, fmt.Errorf("failed to check email: %v: %w", err, apperrors.ErrPersistence)
		}
	}

	// Уникальный индекс в БД закрывает гонку между проверкой и вставкой
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		log.Printf("[UserService] Ошибка создания игрока '%s': %v", name, err)
		return nil, fmt.Errorf("failed to create user: %v: %w", err, apperrors.ErrPersistence)
	}

	log.Printf("[UserService] Зарегистрирован игрок '%s' (ID=%d, аккаунт=%t)", user.Name, user.ID, user.HasAccount())
	return user, nil
}

// GetByName возвращает игрока по имени
func (s *UserService) GetByName(ctx context.Context, name string) (*entity.User, error) {
	return s.userRepo.GetByName(ctx, strings.TrimSpace(name))
}


// Authenticate проверяет email и пароль игрока с аккаунтом
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %v: %w", err, apperrors.ErrPersistence)
	}
	if !user.CheckPassword(password) {
		log.Printf("[UserService] Неверный пароль для email '%s'", email)
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	}
	return user, nil
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
	"github.com/yourusername/spectra-quiz/pkg/auth"
)

// adminSubject - subject административного токена
const adminSubject = "admin"

// LeaderboardNotifier получает сигнал об изменении данных лидерборда
type LeaderboardNotifier interface {
	LeaderboardChanged(ctx context.Context)
}

// AdminService - вход администратора и очистка данных
type AdminService struct {
	adminRepo    repository.AdminRepository
	jwtService   *auth.JWTService
	passwordHash string
	notifier     LeaderboardNotifier
}

// NewAdminService создает административный сервис.
// Пустой passwordHash отключает вход администратора.
func NewAdminService(
	adminRepo repository.AdminRepository,
	jwtService *auth.JWTService,
	passwordHash string,
	notifier LeaderboardNotifier,
) *AdminService {
	return &AdminService{
		adminRepo:    adminRepo,
		jwtService:   jwtService,
		passwordHash: passwordHash,
		notifier:     notifier,
	}
}

// Login проверяет пароль администратора и выпускает токен
func (s *AdminService) Login(password string) (string, time.Time, error) {
	if s.passwordHash == "" || s.jwtService == nil {
		return "", time.Time{}, fmt.Errorf("admin access is disabled: %w", apperrors.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		log.Printf("[AdminService] Неудачная попытка входа администратора")
		return "", time.Time{}, fmt.Errorf("invalid admin password: %w", apperrors.ErrUnauthorized)
	}

	token, expiresAt, err := s.jwtService.Issue(adminSubject)
	if err != nil {
		return "", time.Time{}, err
	}
	log.Printf("[AdminService] Администратор вошёл, токен действует до %s", expiresAt.Format(time.RFC3339))
	return token, expiresAt, nil
}

// ClearAll удаляет всех игроков, ответы и забеги и сбрасывает курсор партий
func (s *AdminService) ClearAll(ctx context.Context) error {
	if err := s.adminRepo.ClearAll(ctx); err != nil {
		log.Printf("[AdminService] Ошибка очистки базы: %v", err)
		return fmt.Errorf("failed to clear data: %v: %w", err, apperrors.ErrPersistence)
	}
	if s.notifier != nil {
		s.notifier.LeaderboardChanged(ctx)
	}
	log.Printf("[AdminService] База очищена")
	return nil
}

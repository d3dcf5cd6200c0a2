package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// Ограничения размера лидерборда
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// Форматы выгрузки
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

const leaderboardVersionKey = "leaderboard:version"

// LeaderboardEntry - строка лидерборда
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Player      string `json:"player"`
	Score       int64  `json:"score"`
	TotalTimeMs int64  `json:"total_time_ms,omitempty"`
	IsBaseline  bool   `json:"is_baseline"`
}

// Leaderboard - упорядоченный лидерборд.
// NoData выставляется в режиме points, когда ни у кого ещё нет результатов.
type Leaderboard struct {
	Mode    string             `json:"mode"`
	Entries []LeaderboardEntry `json:"entries"`
	NoData  bool               `json:"no_data"`
}

// LeaderboardPublisher рассылает свежий лидерборд подписчикам
type LeaderboardPublisher interface {
	PublishLeaderboard(board *Leaderboard)
}

// LeaderboardService строит лидерборд по очкам игроков или по лучшим забегам
type LeaderboardService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	cacheRepo    repository.CacheRepository
	mode         string
	baselines    []config.BaselineConfig
	cacheTTL     time.Duration
	defaultLimit int
	publisher    LeaderboardPublisher
}

// NewLeaderboardService создает сервис лидерборда. cacheRepo может быть nil.
func NewLeaderboardService(
	cfg config.LeaderboardConfig,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cacheRepo repository.CacheRepository,
) *LeaderboardService {
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	mode := cfg.Mode
	if mode == "" {
		mode = config.LeaderboardPoints
	}
	return &LeaderboardService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		cacheRepo:    cacheRepo,
		mode:         mode,
		baselines:    cfg.Baselines,
		cacheTTL:     cfg.CacheTTL,
		defaultLimit: limit,
	}
}

// SetPublisher подключает рассылку изменений (websocket)
func (s *LeaderboardService) SetPublisher(p LeaderboardPublisher) {
	s.publisher = p
}

// NormalizeLimit приводит запрошенный размер к допустимому
func (s *LeaderboardService) NormalizeLimit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	if n > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return n
}

// TopN возвращает первые n мест (n <= 0 - размер по умолчанию).
// В режиме sessions n ограничивает только забеги игроков: базовые записи добавляются
// всегда, поэтому записей может быть больше n.
// Результат кешируется до следующего изменения или истечения cache_ttl.
func (s *LeaderboardService) TopN(ctx context.Context, n int) (*Leaderboard, error) {
	n = s.NormalizeLimit(n)

	key := s.cacheKey(n)
	if key != "" {
		var cached Leaderboard
		if err := s.cacheRepo.GetJSON(key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	board, err := s.build(ctx, n)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cacheRepo.SetJSON(key, board, s.cacheTTL); err != nil {
			log.Printf("[LeaderboardService] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return board, nil
}

// cacheKey включает номер версии: Invalidate увеличивает версию,
// и все ранее закешированные размеры становятся недостижимыми
func (s *LeaderboardService) cacheKey(n int) string {
	if s.cacheRepo == nil || s.cacheTTL <= 0 {
		return ""
	}
	version, err := s.cacheRepo.Get(leaderboardVersionKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения версии кеша: %v", err)
			return ""
		}
		version = "0"
	}
	return fmt.Sprintf("leaderboard:%s:v%s:%d", s.mode, version, n)
}

// Invalidate сбрасывает кеш лидерборда
func (s *LeaderboardService) Invalidate() {
	if s.cacheRepo == nil {
		return
	}
	if _, err := s.cacheRepo.Increment(leaderboardVersionKey); err != nil {
		log.Printf("[LeaderboardService] Ошибка сброса кеша: %v", err)
	}
}

// LeaderboardChanged сбрасывает кеш и рассылает свежий топ подписчикам
func (s *LeaderboardService) LeaderboardChanged(ctx context.Context) {
	s.Invalidate()
	if s.publisher == nil {
		return
	}
	board, err := s.TopN(ctx, s.defaultLimit)
	if err != nil {
		log.Printf("[LeaderboardService] Не удалось построить лидерборд для рассылки: %v", err)
		return
	}
	s.publisher.PublishLeaderboard(board)
}

// build строит лидерборд из хранилища; limit <= 0 - без ограничения
func (s *LeaderboardService) build(ctx context.Context, limit int) (*Leaderboard, error) {
	if s.mode == config.LeaderboardSessions {
		return s.buildSessions(ctx, limit)
	}
	return s.buildPoints(ctx, limit)
}

func (s *LeaderboardService) buildPoints(ctx context.Context, limit int) (*Leaderboard, error) {
	users, err := s.userRepo.ListByPoints(ctx, limit)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка получения игроков: %v", err)
		return nil, fmt.Errorf("failed to load leaderboard: %v: %w", err, apperrors.ErrPersistence)
	}

	board := &Leaderboard{Mode: config.LeaderboardPoints, Entries: make([]LeaderboardEntry, 0, len(users))}
	for i, u := range users {
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:   i + 1,
			Player: u.Name,
			Score:  u.Points,
		})
	}
	board.NoData = len(board.Entries) == 0
	return board, nil
}

func (s *LeaderboardService) buildSessions(ctx context.Context, limit int) (*Leaderboard, error) {
	best, err := s.sessionRepo.ListBest(ctx, limit)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка получения лучших забегов: %v", err)
		return nil, fmt.Errorf("failed to load leaderboard: %v: %w", err, apperrors.ErrPersistence)
	}

	entries := make([]LeaderboardEntry, 0, len(best)+len(s.baselines))
	for _, b := range best {
		entries = append(entries, LeaderboardEntry{
			Player:      b.Name,
			Score:       int64(b.Score),
			TotalTimeMs: b.TotalTimeMs,
		})
	}
	for _, b := range s.baselines {
		entries = append(entries, LeaderboardEntry{
			Player:     b.Name,
			Score:      int64(b.Score),
			IsBaseline: true,
		})
	}

	// Очки по убыванию; при равенстве реальные игроки выше эталонов, затем время по возрастанию
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.IsBaseline != b.IsBaseline {
			return !a.IsBaseline
		}
		return a.TotalTimeMs < b.TotalTimeMs
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &Leaderboard{
		Mode:    config.LeaderboardSessions,
		Entries: entries,
		NoData:  len(entries) == 0,
	}, nil
}

// Export записывает полный лидерборд в w в формате csv или xlsx
func (s *LeaderboardService) Export(ctx context.Context, format string, w io.Writer) error {
	board, err := s.build(ctx, 0)
	if err != nil {
		return err
	}

	switch format {
	case ExportCSV:
		return writeLeaderboardCSV(board, w)
	case ExportXLSX:
		return writeLeaderboardXLSX(board, w)
	default:
		return fmt.Errorf("unsupported export format %q: %w", format, apperrors.ErrValidation)
	}
}

func exportHeaders() []string {
	return []string{"Rank", "Player", "Score", "Total time (ms)", "Baseline"}
}

func writeLeaderboardCSV(board *Leaderboard, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders()); err != nil {
		return err
	}
	for _, e := range board.Entries {
		baseline := "no"
		if e.IsBaseline {
			baseline = "yes"
		}
		if err := writer.Write([]string{
			strconv.Itoa(e.Rank),
			sanitizeForExcel(e.Player),
			strconv.FormatInt(e.Score, 10),
			strconv.FormatInt(e.TotalTimeMs, 10),
			baseline,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeLeaderboardXLSX(board *Leaderboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка создания StreamWriter: %v", err)
		return err
	}

	headers := exportHeaders()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return err
	}

	for i, e := range board.Entries {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{e.Rank, sanitizeForExcel(e.Player), e.Score, e.TotalTimeMs, e.IsBaseline}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[LeaderboardService] Ошибка записи строки %d: %v", i+2, err)
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

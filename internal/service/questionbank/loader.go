package questionbank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// SpectrumPlaceholder подставляется в шаблон формулировки
const SpectrumPlaceholder = "{spectrum}"

// Тексты подстановки по умолчанию
const (
	DefaultEasyPlaceholder = "the labelled spectrum"
	DefaultHardPlaceholder = "the spectrum"
)

// promptSentences - сколько последних предложений шаблона остаётся в формулировке
const promptSentences = 2

// Description - разобранный файл описания вопроса
type Description struct {
	Template      string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Category      string
}

type descriptionFile struct {
	Prompt      string          `json:"prompt"`
	Scores      json.RawMessage `json:"scores"`
	Explanation string          `json:"explanation"`
	Category    string          `json:"category"`
}

// LoadDirectory собирает банк из файлов описаний и двух наборов картинок.
// Три списка сортируются и сопоставляются по позиции; разная длина списков -
// ошибка конфигурации, банк не создаётся.
func LoadDirectory(cfg config.BankConfig) (*Bank, error) {
	descriptions, err := sortedGlob(cfg.DescriptionGlob)
	if err != nil {
		return nil, err
	}
	easyImages, err := sortedGlob(cfg.EasyImageGlob)
	if err != nil {
		return nil, err
	}
	hardImages, err := sortedGlob(cfg.HardImageGlob)
	if err != nil {
		return nil, err
	}

	if len(descriptions) != len(easyImages) || len(descriptions) != len(hardImages) {
		return nil, fmt.Errorf("question assets mismatch: %d descriptions, %d easy images, %d hard images: %w",
			len(descriptions), len(easyImages), len(hardImages), apperrors.ErrConfiguration)
	}
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("no description files match %q: %w", cfg.DescriptionGlob, apperrors.ErrConfiguration)
	}

	easyText := orDefault(cfg.EasyPlaceholder, DefaultEasyPlaceholder)
	hardText := orDefault(cfg.HardPlaceholder, DefaultHardPlaceholder)

	questions := make([]entity.Question, 0, len(descriptions))
	for i, path := range descriptions {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v: %w", path, err, apperrors.ErrConfiguration)
		}
		desc, err := ParseDescription(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		questions = append(questions, entity.Question{
			Prompt:        Instantiate(desc.Template, easyText),
			PromptHard:    Instantiate(desc.Template, hardText),
			Options:       desc.Options,
			CorrectAnswer: desc.CorrectAnswer,
			Explanation:   desc.Explanation,
			Category:      desc.Category,
			ImageEasy:     assetURL(cfg.AssetDir, easyImages[i]),
			ImageHard:     assetURL(cfg.AssetDir, hardImages[i]),
		})
	}

	log.Printf("[QuestionBank] Загружено %d вопросов из %s", len(questions), cfg.DescriptionGlob)
	return New(questions), nil
}

func sortedGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %v: %w", pattern, err, apperrors.ErrConfiguration)
	}
	sort.Strings(matches)
	return matches, nil
}

// ParseDescription разбирает файл описания. Варианты ответа идут в порядке ключей
// "scores" в файле; правильный ответ - единственная метка со значением 1.
func ParseDescription(data []byte) (*Description, error) {
	var file descriptionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid description json: %v: %w", err, apperrors.ErrConfiguration)
	}
	if strings.TrimSpace(file.Prompt) == "" {
		return nil, fmt.Errorf("description has no prompt: %w", apperrors.ErrConfiguration)
	}

	labels, scores, err := decodeOrderedScores(file.Scores)
	if err != nil {
		return nil, err
	}

	correct := ""
	for i, score := range scores {
		if score != 1 {
			continue
		}
		if correct != "" {
			return nil, fmt.Errorf("labels %q and %q both score 1: %w", correct, labels[i], apperrors.ErrConfiguration)
		}
		correct = labels[i]
	}
	if correct == "" {
		return nil, fmt.Errorf("no label scores 1: %w", apperrors.ErrConfiguration)
	}

	return &Description{
		Template:      LastSentences(file.Prompt, promptSentences),
		Options:       labels,
		CorrectAnswer: correct,
		Explanation:   file.Explanation,
		Category:      file.Category,
	}, nil
}

// decodeOrderedScores читает объект label->score потоково, сохраняя порядок ключей
func decodeOrderedScores(raw json.RawMessage) ([]string, []float64, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("description has no scores: %w", apperrors.ErrConfiguration)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid scores: %v: %w", err, apperrors.ErrConfiguration)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("scores must be an object: %w", apperrors.ErrConfiguration)
	}

	var labels []string
	var scores []float64
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid scores: %v: %w", err, apperrors.ErrConfiguration)
		}
		label, _ := keyTok.(string)
		var score float64
		if err := dec.Decode(&score); err != nil {
			return nil, nil, fmt.Errorf("score of %q is not a number: %w", label, apperrors.ErrConfiguration)
		}
		if seen[label] {
			return nil, nil, fmt.Errorf("duplicate label %q: %w", label, apperrors.ErrConfiguration)
		}
		seen[label] = true
		labels = append(labels, label)
		scores = append(scores, score)
	}
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("scores is empty: %w", apperrors.ErrConfiguration)
	}
	return labels, scores, nil
}

// LastSentences оставляет последние n предложений текста. Предложение заканчивается
// на '.', '!' или '?', за которыми идёт пробел или конец текста, поэтому "1.5 ppm"
// предложение не разрывает.
func LastSentences(text string, n int) string {
	runes := []rune(strings.TrimSpace(text))
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminator(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	if len(sentences) > n {
		sentences = sentences[len(sentences)-n:]
	}
	return strings.Join(sentences, " ")
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Instantiate подставляет текст вместо {spectrum}; прочие плейсхолдеры остаются как есть
func Instantiate(template, spectrumText string) string {
	return strings.ReplaceAll(template, SpectrumPlaceholder, spectrumText)
}

// assetURL превращает путь внутри каталога ассетов в URL раздачи /assets/...
func assetURL(assetDir, path string) string {
	if assetDir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(assetDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return "/assets/" + filepath.ToSlash(rel)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

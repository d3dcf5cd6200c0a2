package entity

// Уровни сложности подачи вопроса
const (
	TierEasy = "easy"
	TierHard = "hard"
)

// IsValidTier проверяет название уровня сложности
func IsValidTier(tier string) bool {
	return tier == TierEasy || tier == TierHard
}

// Question представляет вопрос банка. Вопросы не хранятся в БД:
// банк собирается при старте процесса и дальше только читается.
type Question struct {
	ID uint `json:"id"`

	// Prompt - формулировка для лёгкого (или единственного) уровня,
	// PromptHard - для сложного. Пустой PromptHard означает "как Prompt".
	Prompt     string `json:"prompt"`
	PromptHard string `json:"prompt_hard,omitempty"`

	// Options хранит варианты в порядке показа
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"-"`
	Explanation   string   `json:"explanation,omitempty"`
	Category      string   `json:"category"`

	ImageEasy string          `json:"image_easy,omitempty"`
	ImageHard string          `json:"image_hard,omitempty"`
	Spectrum  *SpectrumParams `json:"spectrum,omitempty"`
}

// IsCorrect сравнивает ответ с правильным строго посимвольно,
// без обрезки пробелов и приведения регистра.
func (q *Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// CalculatePoints возвращает 1 за правильный ответ, 0 за неправильный.
func (q *Question) CalculatePoints(isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return 1
}

// HasOption проверяет, входит ли ответ в список вариантов
func (q *Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// PromptFor возвращает формулировку для уровня сложности
func (q *Question) PromptFor(tier string) string {
	if tier == TierHard && q.PromptHard != "" {
		return q.PromptHard
	}
	return q.Prompt
}

// ImageFor возвращает изображение для уровня сложности
func (q *Question) ImageFor(tier string) string {
	if tier == TierHard && q.ImageHard != "" {
		return q.ImageHard
	}
	return q.ImageEasy
}

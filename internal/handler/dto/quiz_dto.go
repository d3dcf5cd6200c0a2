package dto

import (
	"time"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/service/quizmanager"
)

// StartQuizRequest - запрос на старт забега. Email и пароль нужны только для аккаунта.
type StartQuizRequest struct {
	Name            string `json:"name" binding:"required,max=50"`
	Tier            string `json:"tier" binding:"omitempty,oneof=easy hard"`
	Email           string `json:"email" binding:"omitempty,max=100"`
	Password        string `json:"password" binding:"omitempty,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"omitempty,max=72"`
}

// ToStartRequest переводит DTO в запрос движка
func (r StartQuizRequest) ToStartRequest() quizmanager.StartRequest {
	return quizmanager.StartRequest{
		Registration: quizmanager.Registration{
			Name:            r.Name,
			Email:           r.Email,
			Password:        r.Password,
			ConfirmPassword: r.ConfirmPassword,
		},
		Tier: r.Tier,
	}
}

// AnswerRequest - ответ на текущий вопрос
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SpectrumResponse - синтетический спектр текущего вопроса
type SpectrumResponse struct {
	Points []entity.SpectrumPoint `json:"points"`
}

// AdminLoginRequest - вход администратора
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse - выданный административный токен
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BankQuestionResponse - вопрос банка для администратора, вместе с правильным ответом
type BankQuestionResponse struct {
	ID            uint     `json:"id"`
	Prompt        string   `json:"prompt"`
	PromptHard    string   `json:"prompt_hard,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Category      string   `json:"category"`
	ImageEasy     string   `json:"image_easy,omitempty"`
	ImageHard     string   `json:"image_hard,omitempty"`
	HasSpectrum   bool     `json:"has_spectrum"`
}

// NewBankQuestionResponse создает DTO для вопроса банка
func NewBankQuestionResponse(q *entity.Question) BankQuestionResponse {
	return BankQuestionResponse{
		ID:            q.ID,
		Prompt:        q.Prompt,
		PromptHard:    q.PromptHard,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Category:      q.Category,
		ImageEasy:     q.ImageEasy,
		ImageHard:     q.ImageHard,
		HasSpectrum:   q.Spectrum != nil,
	}
}

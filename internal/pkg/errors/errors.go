package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, неверный пароль администратора).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных
	// (слишком короткое имя, несовпадающие пароли, неизвестный вариант ответа).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: имя или email уже заняты,
	// на вопрос уже ответили.
	ErrConflict = errors.New("resource state conflict")

	// ErrPersistence используется, когда хранилище недоступно или запись не удалась.
	// Для пользователя это не фатально: запрос можно повторить.
	ErrPersistence = errors.New("persistence failure")

	// ErrConfiguration используется для ошибок конфигурации при старте
	// (например, число файлов описаний не совпадает с числом изображений). Фатальна.
	ErrConfiguration = errors.New("configuration error")
)

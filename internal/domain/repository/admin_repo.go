package repository

import "context"

// AdminRepository - административные операции над хранилищем
type AdminRepository interface {
	// ClearAll удаляет ответы, забеги и игроков и сбрасывает курсор партий
	ClearAll(ctx context.Context) error
}

package repository

import "context"

// BatchStateRepository хранит курсор ротации партий вопросов
type BatchStateRepository interface {
	// Current возвращает текущий номер партии (1, если строки ещё нет)
	Current(ctx context.Context) (int, error)
	// Set перезаписывает курсор
	Set(ctx context.Context, batch int) error
	// Rotate выполняет чтение-изменение-запись курсора атомарно:
	// fn получает текущее значение и возвращает новое.
	Rotate(ctx context.Context, fn func(current int) (int, error)) error
}

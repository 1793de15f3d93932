package repository

import (
	"context"

	"tijuanashop/internal/domain/entity"
)

type ChatRepository interface {
	// FindByParticipantAndProduct returns chats about productID that
	// include userID, ordered by id.
	FindByParticipantAndProduct(ctx context.Context, userID, productID string) ([]*entity.Chat, error)
	// CreateIfAbsent inserts chat under chat.ID. It reports false when a
	// document with that id already exists.
	CreateIfAbsent(ctx context.Context, chat *entity.Chat) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error)

	// CreateMessage stores the message and refreshes the chat's
	// last-message summary in one batch.
	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, chatID string, limit int) ([]*entity.Message, error)
	// WatchMessages calls fn for every message added to the chat until ctx
	// is cancelled or fn returns an error.
	WatchMessages(ctx context.Context, chatID string, fn func(*entity.Message) error) error
}

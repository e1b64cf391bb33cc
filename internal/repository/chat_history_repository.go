package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// ChatHistoryRepository stores audit entries.
type ChatHistoryRepository interface {
	Create(ctx context.Context, history *domain.ChatHistory) error
	ListByChat(ctx context.Context, chatID string, limit int) ([]domain.ChatHistory, error)
}

type chatHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewChatHistoryRepository builds repository.
func NewChatHistoryRepository(pool *pgxpool.Pool) ChatHistoryRepository {
	return &chatHistoryRepository{pool: pool}
}

func (r *chatHistoryRepository) Create(ctx context.Context, history *domain.ChatHistory) error {
	const query = `
        INSERT INTO chat_history (chat_id, actor_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		history.ChatID,
		history.ActorID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

// ListByChat returns entries newest first.
func (r *chatHistoryRepository) ListByChat(ctx context.Context, chatID string, limit int) ([]domain.ChatHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id::text, chat_id, actor_id, change_type, old_value, new_value, created_at
        FROM chat_history WHERE chat_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatHistory(rows)
}

func scanChatHistory(rows pgx.Rows) ([]domain.ChatHistory, error) {
	result := []domain.ChatHistory{}
	for rows.Next() {
		var history domain.ChatHistory
		if err := rows.Scan(
			&history.ID,
			&history.ChatID,
			&history.ActorID,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

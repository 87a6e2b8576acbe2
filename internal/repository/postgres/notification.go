package postgres

import (
	"context"
	"encoding/json"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return domain.WrapInternal(err, "marshal notification attributes")
	}
	query := `INSERT INTO notifications (user_id, title, message, attributes, is_read, created_on)
	          VALUES ($1, $2, $3, $4, false, $5) RETURNING id`
	note.CreatedOn = time.Now()
	if err := r.db.QueryRowContext(ctx, query, note.UserID, note.Title, note.Message, attrs, note.CreatedOn).Scan(&note.ID); err != nil {
		return domain.WrapInternal(err, "create notification")
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, domain.WrapInternal(err, "count notifications")
	}

	query := `SELECT id, user_id, title, message, attributes, is_read, created_on
	          FROM notifications WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, domain.WrapInternal(err, "list notifications")
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &attrs, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, domain.WrapInternal(err, "scan notification")
		}
		if len(attrs) > 0 {
			_ = json.Unmarshal(attrs, &n.Attributes)
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return domain.WrapInternal(err, "mark notification read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("notification %d not found", id)
	}
	return nil
}

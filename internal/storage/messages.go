package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// CreateContactMessage сохраняет обращение со статусом new.
func (s *Storage) CreateContactMessage(ctx context.Context, m models.ContactMessage) error {
	const op = "storage.CreateContactMessage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO contact_messages (id, name, email, subject, message, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.Subject, m.Message, string(m.Status), m.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListContactMessages возвращает обращения, новые сверху.
// Пустой статус означает выборку без фильтра.
func (s *Storage) ListContactMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error) {
	const op = "storage.ListContactMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, subject, message, status, created_at
			  FROM contact_messages
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateContactMessageStatus меняет статус обращения.
func (s *Storage) UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error {
	const op = "storage.UpdateContactMessageStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE contact_messages SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrMessageNotFound)
	}
	return nil
}

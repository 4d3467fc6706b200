package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

// verificationRepo is read-only: log rows are appended inside the user
// repo's review transactions and never touched again.
type verificationRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewVerificationRepo(db *pgxpool.Pool, log logger.ILogger) storage.IVerificationStorage {
	return &verificationRepo{db: db, log: log}
}

func (r *verificationRepo) ListForUser(ctx context.Context, userID string) ([]*models.VerificationLog, error) {
	query := `
		SELECT id, user_id, admin_id, previous_status, new_status, reason, created_at
		FROM verification_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list verification logs", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var logs []*models.VerificationLog
	for rows.Next() {
		var l models.VerificationLog
		err := rows.Scan(&l.ID, &l.UserID, &l.AdminID, &l.PreviousStatus, &l.NewStatus, &l.Reason, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

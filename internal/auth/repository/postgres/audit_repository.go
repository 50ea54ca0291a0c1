package postgres

import (
	"context"
	"fmt"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one entry; audit rows are never updated.
func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_log (user_id, event, description, ip_address)
		VALUES ($1, $2, $3, $4)`,
		entry.UserID, entry.Event, entry.Description, entry.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"

	"eventregistration/internal/domain"
)

type archiveRepository struct {
	DB *sql.DB
}

func NewArchiveRepository(db *sql.DB) domain.ArchiveRepository {
	return &archiveRepository{DB: db}
}

func (r *archiveRepository) Create(ctx context.Context, a *domain.ArchivedRegistrant) error {
	query := `
		INSERT INTO archived_registrants (id, email, name, phone, lucky_number, is_donor, is_author, is_volunteer, slot, remarks, guest_count, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.Email, a.Name, a.Phone, a.LuckyNumber, a.IsDonor, a.IsAuthor, a.IsVolunteer,
		string(a.Slot), nullString(a.Remarks), a.GuestCount, a.DeletedAt,
	)
	return err
}

func (r *archiveRepository) ListByDeletedAt(ctx context.Context) ([]*domain.ArchivedRegistrant, error) {
	query := `
		SELECT id, email, name, phone, lucky_number, is_donor, is_author, is_volunteer, slot, remarks, guest_count, deleted_at
		FROM archived_registrants
		ORDER BY deleted_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ArchivedRegistrant
	for rows.Next() {
		a := &domain.ArchivedRegistrant{}
		var slot string
		var remarks sql.NullString
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.LuckyNumber, &a.IsDonor, &a.IsAuthor,
			&a.IsVolunteer, &slot, &remarks, &a.GuestCount, &a.DeletedAt); err != nil {
			return nil, err
		}
		a.Slot = domain.Slot(slot)
		a.Remarks = remarks.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.ArchivedRegistrant{}
	}
	return out, nil
}

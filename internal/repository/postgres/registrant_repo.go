package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventregistration/internal/domain"
)

const registrantColumns = `email, name, phone, lucky_number, is_donor, is_author, is_volunteer, slot, remarks, guest_count, created_at, updated_at`

type registrantRepository struct {
	DB *sql.DB
}

func NewRegistrantRepository(db *sql.DB) domain.RegistrantRepository {
	return &registrantRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistrant(row rowScanner) (*domain.Registrant, error) {
	r := &domain.Registrant{}
	var remarks sql.NullString
	var slot string
	err := row.Scan(&r.Email, &r.Name, &r.Phone, &r.LuckyNumber, &r.IsDonor, &r.IsAuthor, &r.IsVolunteer,
		&slot, &remarks, &r.GuestCount, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Slot = domain.Slot(slot)
	r.Remarks = remarks.String
	return r, nil
}

func (r *registrantRepository) GetByEmail(ctx context.Context, email string) (*domain.Registrant, error) {
	query := `
		SELECT ` + registrantColumns + `
		FROM registrants
		WHERE email = $1
	`
	reg, err := scanRegistrant(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrantRepository) Upsert(ctx context.Context, reg *domain.Registrant) error {
	query := `
		INSERT INTO registrants (` + registrantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			lucky_number = EXCLUDED.lucky_number,
			is_donor = EXCLUDED.is_donor,
			is_author = EXCLUDED.is_author,
			is_volunteer = EXCLUDED.is_volunteer,
			slot = EXCLUDED.slot,
			remarks = EXCLUDED.remarks,
			guest_count = EXCLUDED.guest_count,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.Email, reg.Name, reg.Phone, reg.LuckyNumber, reg.IsDonor, reg.IsAuthor, reg.IsVolunteer,
		string(reg.Slot), nullString(reg.Remarks), reg.GuestCount, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.CreatedAt)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" && perr.Constraint == luckyNumberConstraint {
			return domain.ErrLuckyNumberTaken
		}
		return err
	}
	return nil
}

func (r *registrantRepository) ExistsByLuckyNumber(ctx context.Context, n int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM registrants WHERE lucky_number = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, n).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *registrantRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrants`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *registrantRepository) DeleteByEmail(ctx context.Context, email string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM registrants WHERE email = $1`, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrantRepository) List(ctx context.Context) ([]*domain.Registrant, error) {
	query := `
		SELECT ` + registrantColumns + `
		FROM registrants
		ORDER BY created_at ASC, email ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.Registrant
	for rows.Next() {
		reg, err := scanRegistrant(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registrant{}
	}
	return regs, nil
}

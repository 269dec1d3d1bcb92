package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
)

const accountColumns = `id, email, username, password_hash, role, mfa_enabled, partner_status,
	phone, business_name, terms_accepted_at, created_at, updated_at`

type accountsRepo struct {
	db DBTX
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Email,
		nullString(a.Username),
		a.PasswordHash,
		string(a.Role),
		a.MFAEnabled,
		nullPartnerStatus(a.PartnerStatus),
		a.Phone,
		a.BusinessName,
		nullTime(a.TermsAcceptedAt),
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
}

func (r *accountsRepo) UpdateRole(ctx context.Context, id string, role domain.Role, status *domain.PartnerStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET role = ?, partner_status = ?, updated_at = ?
		WHERE id = ?`,
		string(role), nullPartnerStatus(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *accountsRepo) SetPartnerStatus(ctx context.Context, id string, status domain.PartnerStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET partner_status = ?, updated_at = ?
		WHERE id = ? AND role = 'partner'`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *accountsRepo) ListPartners(ctx context.Context, status *domain.PartnerStatus) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = 'partner'`
	var args []any
	if status != nil {
		query += ` AND partner_status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountByRole(ctx context.Context) ([]domain.RoleCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role,
		       CASE WHEN role = 'partner' THEN partner_status END AS status,
		       COUNT(*)
		FROM accounts
		GROUP BY 1, 2
		ORDER BY 1, 2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoleCount
	for rows.Next() {
		var (
			role   string
			status sql.NullString
			rc     domain.RoleCount
		)
		if err := rows.Scan(&role, &status, &rc.Count); err != nil {
			return nil, err
		}
		rc.Role = domain.Role(role)
		if status.Valid {
			ps := domain.PartnerStatus(status.String)
			rc.PartnerStatus = &ps
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *accountsRepo) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a        domain.Account
		username sql.NullString
		role     string
		status   sql.NullString
		terms    sql.NullTime
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&username,
		&a.PasswordHash,
		&role,
		&a.MFAEnabled,
		&status,
		&a.Phone,
		&a.BusinessName,
		&terms,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Username = stringPtr(username)
	a.Role = domain.Role(role)
	if status.Valid {
		ps := domain.PartnerStatus(status.String)
		a.PartnerStatus = &ps
	}
	a.TermsAcceptedAt = timePtr(terms)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func nullPartnerStatus(s *domain.PartnerStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

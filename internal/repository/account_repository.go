package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/IL272/Wilddict/internal/model"
)

// ErrAccountNotFound is returned when no account matches a lookup.
var ErrAccountNotFound = errors.New("account not found")

// accountConstraints names the unique constraints of the accounts table
// as MySQL (index name) and SQLite (table.column) report them.
var accountConstraints = map[string][]string{
	"email":    {"uq_accounts_email", "accounts.email"},
	"username": {"uq_accounts_username", "accounts.username"},
}

// AccountRepo mirrors the 'accounts' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,email,username,password_hash,is_active,created_at"

// Create inserts the account and fills in its ID.  A violated unique index
// is reported as ConflictError with Field "email" or "username".
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, username, password_hash, is_active, created_at) VALUES (?,?,?,?,?)",
		a.Email, a.Username, a.PasswordHash, a.IsActive, a.CreatedAt)
	if err != nil {
		if ident, ok := uniqueViolation(err); ok {
			return ConflictError{
				Op:    "accounts.create",
				Field: conflictField(ident, accountConstraints, []string{"email", "username"}),
			}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByEmail fetches an account by exact email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id))
}

// GetByEmailOrUsername returns an account whose email or username matches.
// When two different accounts match, the one owning the email is returned.
func (r *AccountRepo) GetByEmailOrUsername(ctx context.Context, email, username string) (*model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE email=? OR username=?
		 ORDER BY CASE WHEN email=? THEN 0 ELSE 1 END
		 LIMIT 1`, email, username, email))
}

// SetActive flips the is_active flag.  It returns ErrAccountNotFound when no
// row matches.
func (r *AccountRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE accounts SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepo) scanOne(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

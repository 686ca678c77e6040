// This file defines the word repository.  Every query that touches an
// existing row filters on owner_id as well as id: a word id alone never
// selects, changes or removes a row.

package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/IL272/Wilddict/internal/model"
)

// ErrWordNotFound is returned when a word does not exist or belongs to a
// different owner.  The two cases are the same error.
var ErrWordNotFound = errors.New("word not found")

// tagSeparator joins tags in the words.tags column.
const tagSeparator = ","

// WordRepo encapsulates all database queries related to words.
type WordRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewWordRepo constructs a WordRepo with the provided DB handle.
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

const wordColumns = "id, owner_id, word, definition, example, language, source_language, tags, created_at"

// Create inserts a new word.  On success the word's ID and CreatedAt fields
// are populated.
func (r *WordRepo) Create(ctx context.Context, w *model.Word) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	const q = `INSERT INTO words (owner_id, word, definition, example, language, source_language, tags, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, w.OwnerID, w.Word, w.Definition, w.Example,
		w.Language, w.SourceLanguage, joinTags(w.Tags), w.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// GetByIDAndOwner fetches a word by id but only if it belongs to the
// specified owner.  If the word doesn't exist or is owned by someone else,
// ErrWordNotFound is returned.
func (r *WordRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Word, error) {
	const q = "SELECT " + wordColumns + " FROM words WHERE id = ? AND owner_id = ?"
	w, err := scanWord(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWordNotFound
		}
		return nil, err
	}
	return w, nil
}

// ListByOwner returns the owner's words ordered by id, narrowed by f.
// A non-positive f.Limit returns no rows.
func (r *WordRepo) ListByOwner(ctx context.Context, ownerID uint64, f model.WordFilter) ([]*model.Word, error) {
	q := "SELECT " + wordColumns + " FROM words WHERE owner_id = ?"
	args := []any{ownerID}
	if f.Language != "" {
		q += " AND language = ?"
		args = append(args, f.Language)
	}
	q += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Word{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByIDAndOwner replaces the editable fields of a word if it belongs
// to the provided owner and returns the stored row.
func (r *WordRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, in model.WordInput) (*model.Word, error) {
	const q = `UPDATE words
	           SET word = ?, definition = ?, example = ?, language = ?, source_language = ?, tags = ?
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, in.Word, in.Definition, in.Example,
		in.Language, in.SourceLanguage, joinTags(in.Tags), id, ownerID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrWordNotFound
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner removes a word owned by ownerID.
func (r *WordRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// ExistsForOwner reports whether the owner already has an entry spelled
// exactly like word.  The seed command uses it to stay idempotent.
func (r *WordRepo) ExistsForOwner(ctx context.Context, ownerID uint64, word string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM words WHERE owner_id = ? AND word = ?`, ownerID, word).Scan(&n)
	return n > 0, err
}

// StatsByOwner counts the owner's words and collects the distinct languages
// in ascending order.
func (r *WordRepo) StatsByOwner(ctx context.Context, ownerID uint64) (model.Stats, error) {
	var st model.Stats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM words WHERE owner_id = ?`, ownerID).Scan(&st.TotalWords); err != nil {
		return model.Stats{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT language FROM words WHERE owner_id = ?`, ownerID)
	if err != nil {
		return model.Stats{}, err
	}
	defer rows.Close()
	st.Languages = []string{}
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return model.Stats{}, err
		}
		st.Languages = append(st.Languages, lang)
	}
	if err := rows.Err(); err != nil {
		return model.Stats{}, err
	}
	sort.Strings(st.Languages)
	st.LanguageCount = len(st.Languages)
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(s rowScanner) (*model.Word, error) {
	var (
		w    model.Word
		tags string
	)
	if err := s.Scan(&w.ID, &w.OwnerID, &w.Word, &w.Definition, &w.Example,
		&w.Language, &w.SourceLanguage, &tags, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.Tags = splitTags(tags)
	return &w, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, tagSeparator)
}

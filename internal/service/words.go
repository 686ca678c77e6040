package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/queue"
	"github.com/IL272/Wilddict/internal/repository"
)

// Listing bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// WordStore is the owner-scoped persistence behind WordService.  Every
// method takes the owner id; none can reach a row by id alone.
type WordStore interface {
	Create(ctx context.Context, w *model.Word) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Word, error)
	ListByOwner(ctx context.Context, ownerID uint64, f model.WordFilter) ([]*model.Word, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, in model.WordInput) (*model.Word, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	StatsByOwner(ctx context.Context, ownerID uint64) (model.Stats, error)
}

// ScopeInvalidator drops cached responses belonging to one owner.
type ScopeInvalidator interface {
	InvalidateScope(ctx context.Context, ownerID uint64) error
}

// AuthorizeAccess reports whether principal may touch a record owned by
// ownerID.  Ownership is the only rule: there are no roles or shares.
func AuthorizeAccess(principal *model.Account, ownerID uint64) bool {
	return principal != nil && principal.ID == ownerID
}

// WordService runs every word operation inside the principal's scope.
type WordService struct {
	words  WordStore
	events queue.Publisher
	cache  ScopeInvalidator
	log    *zap.Logger
}

// NewWordService wires a WordService.  events and cache may be nil.
func NewWordService(words WordStore, events queue.Publisher, cache ScopeInvalidator, log *zap.Logger) *WordService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &WordService{words: words, events: events, cache: cache, log: log}
}

// List returns the principal's words in insertion order, narrowed by f.  A zero
// limit means DefaultLimit; larger limits are capped at MaxLimit.
func (s *WordService) List(ctx context.Context, principal *model.Account, f model.WordFilter) ([]*model.Word, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	if f.Skip < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", ErrInvalidInput)
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Language = strings.TrimSpace(f.Language)

	words, err := s.words.ListByOwner(ctx, principal.ID, f)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	return words, nil
}

// Get returns one of the principal's words.  A word of another owner is
// reported exactly like a missing one.
func (s *WordService) Get(ctx context.Context, principal *model.Account, id uint64) (*model.Word, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	w, err := s.words.GetByIDAndOwner(ctx, id, principal.ID)
	if err != nil {
		return nil, mapWordErr("get word", err)
	}
	if !AuthorizeAccess(principal, w.OwnerID) {
		return nil, ErrNotFound
	}
	return w, nil
}

// Create stores a new word owned by the principal.  The owner never comes
// from the input.
func (s *WordService) Create(ctx context.Context, principal *model.Account, in model.WordInput) (*model.Word, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	in, err := normalizeWord(in)
	if err != nil {
		return nil, err
	}
	w := &model.Word{
		OwnerID:        principal.ID,
		Word:           in.Word,
		Definition:     in.Definition,
		Example:        in.Example,
		Language:       in.Language,
		SourceLanguage: in.SourceLanguage,
		Tags:           in.Tags,
	}
	if err := s.words.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create word: %w", err)
	}
	s.changed(ctx, queue.WordCreated, w)
	return w, nil
}

// Update replaces the editable fields of one of the principal's words.
func (s *WordService) Update(ctx context.Context, principal *model.Account, id uint64, in model.WordInput) (*model.Word, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	in, err := normalizeWord(in)
	if err != nil {
		return nil, err
	}
	w, err := s.words.UpdateByIDAndOwner(ctx, id, principal.ID, in)
	if err != nil {
		return nil, mapWordErr("update word", err)
	}
	s.changed(ctx, queue.WordUpdated, w)
	return w, nil
}

// Delete removes one of the principal's words.
func (s *WordService) Delete(ctx context.Context, principal *model.Account, id uint64) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if err := s.words.DeleteByIDAndOwner(ctx, id, principal.ID); err != nil {
		return mapWordErr("delete word", err)
	}
	s.changed(ctx, queue.WordDeleted, &model.Word{ID: id, OwnerID: principal.ID})
	return nil
}

// Stats summarizes the principal's vocabulary.
func (s *WordService) Stats(ctx context.Context, principal *model.Account) (model.Stats, error) {
	if principal == nil {
		return model.Stats{}, ErrUnauthenticated
	}
	st, err := s.words.StatsByOwner(ctx, principal.ID)
	if err != nil {
		return model.Stats{}, fmt.Errorf("word stats: %w", err)
	}
	return st, nil
}

// changed runs the best-effort side effects of a successful write.
func (s *WordService) changed(ctx context.Context, typ string, w *model.Word) {
	if s.cache != nil {
		if err := s.cache.InvalidateScope(ctx, w.OwnerID); err != nil {
			s.log.Warn("cache invalidation failed", zap.Uint64("owner_id", w.OwnerID), zap.Error(err))
		}
	}
	ev := queue.NewEvent(typ, w.OwnerID)
	ev.WordID, ev.Word, ev.Language = w.ID, w.Word, w.Language
	_ = s.events.Publish(ctx, ev)
}

func mapWordErr(op string, err error) error {
	if errors.Is(err, repository.ErrWordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// normalizeWord trims the input and checks the required fields.  Tags are
// trimmed, blanks dropped, and commas rejected since storage joins on them.
func normalizeWord(in model.WordInput) (model.WordInput, error) {
	in.Word = strings.TrimSpace(in.Word)
	in.Language = strings.TrimSpace(in.Language)
	in.SourceLanguage = strings.TrimSpace(in.SourceLanguage)
	if in.Word == "" {
		return in, fmt.Errorf("%w: word is required", ErrInvalidInput)
	}
	if in.Language == "" {
		return in, fmt.Errorf("%w: language is required", ErrInvalidInput)
	}
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.Contains(t, ",") {
			return in, fmt.Errorf("%w: tags must not contain commas", ErrInvalidInput)
		}
		tags = append(tags, t)
	}
	in.Tags = tags
	return in, nil
}

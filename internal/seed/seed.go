// Package seed loads the demo accounts and their vocabulary.  Running it
// twice is harmless: existing accounts and words are skipped.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/service"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

// Account is one demo account with the words it owns.
type Account struct {
	Email    string
	Username string
	Words    []model.WordInput
}

// Demo is the default data set.
var Demo = []Account{
	{
		Email: "user1@example.com", Username: "Alice",
		Words: []model.WordInput{
			{Word: "Serendipity", Definition: "The occurrence of events by chance in a happy or beneficial way",
				Example: "Finding that book in the old bookstore was pure serendipity.",
				Language: "English", SourceLanguage: "Russian", Tags: []string{"noun", "abstract"}},
			{Word: "Wanderlust", Definition: "A strong desire to travel and explore the world",
				Example: "Her wanderlust took her to over 30 countries.",
				Language: "English", SourceLanguage: "Russian", Tags: []string{"noun", "travel"}},
			{Word: "Schadenfreude", Definition: "Pleasure derived from another person's misfortune",
				Example: "I felt a bit of schadenfreude when my rival failed the test.",
				Language: "German", SourceLanguage: "Russian", Tags: []string{"noun", "emotion"}},
		},
	},
	{
		Email: "user2@example.com", Username: "Bob",
		Words: []model.WordInput{
			{Word: "Konnichiwa", Definition: "Hello, good afternoon (Japanese greeting)",
				Example: "She greeted everyone with a cheerful 'Konnichiwa!'",
				Language: "Japanese", SourceLanguage: "Russian", Tags: []string{"greeting", "phrase"}},
			{Word: "Arigato", Definition: "Thank you in Japanese",
				Example: "Arigato gozaimasu for your help!",
				Language: "Japanese", SourceLanguage: "Russian", Tags: []string{"gratitude", "phrase"}},
			{Word: "Bonjour", Definition: "Good morning/Hello in French",
				Example: "Bonjour! Comment allez-vous?",
				Language: "French", SourceLanguage: "Russian", Tags: []string{"greeting", "phrase"}},
		},
	},
	{
		Email: "user3@example.com", Username: "Charlie",
		Words: []model.WordInput{
			{Word: "Lagom", Definition: "Just the right amount, not too much, not too little (Swedish)",
				Example: "The Swedish concept of lagom promotes balance in life.",
				Language: "Swedish", SourceLanguage: "Russian", Tags: []string{"adjective", "philosophy"}},
			{Word: "Saudade", Definition: "A deep emotional state of nostalgic longing (Portuguese)",
				Example: "She felt saudade for her hometown.",
				Language: "Portuguese", SourceLanguage: "Russian", Tags: []string{"noun", "emotion"}},
			{Word: "Hygge", Definition: "A quality of coziness that makes a person feel content (Danish)",
				Example: "We created hygge by lighting candles and drinking hot cocoa.",
				Language: "Danish", SourceLanguage: "Russian", Tags: []string{"noun", "lifestyle"}},
		},
	},
}

// WordLookup reports whether an owner already has a word.
type WordLookup interface {
	ExistsForOwner(ctx context.Context, ownerID uint64, word string) (bool, error)
}

// Seeder writes a data set through the regular services, so demo accounts
// get real bcrypt hashes and demo words pass the same validation as user
// input.
type Seeder struct {
	Registry *service.Registry
	Words    *service.WordService
	Existing WordLookup
	Log      *zap.Logger
}

// Result counts what a run created.
type Result struct {
	Accounts int
	Words    int
}

// Run creates the accounts and words of data that do not exist yet.
func (s *Seeder) Run(ctx context.Context, data []Account) (Result, error) {
	var res Result
	for _, d := range data {
		acc, err := s.Registry.GetByEmail(ctx, d.Email)
		if err != nil {
			return res, err
		}
		if acc == nil {
			sess, err := s.Registry.Register(ctx, d.Email, d.Username, DemoPassword)
			if err != nil {
				return res, fmt.Errorf("register %s: %w", d.Email, err)
			}
			acc = sess.Account
			res.Accounts++
			s.Log.Info("account created", zap.String("username", acc.Username), zap.String("email", acc.Email))
		} else {
			s.Log.Info("account exists, skipping", zap.String("username", acc.Username))
		}

		for _, w := range d.Words {
			ok, err := s.Existing.ExistsForOwner(ctx, acc.ID, w.Word)
			if err != nil {
				return res, fmt.Errorf("check word %q: %w", w.Word, err)
			}
			if ok {
				continue
			}
			if _, err := s.Words.Create(ctx, acc, w); err != nil {
				return res, fmt.Errorf("create word %q: %w", w.Word, err)
			}
			res.Words++
		}
	}
	return res, nil
}

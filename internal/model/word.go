package model

import "time"

// Word is a vocabulary entry owned by exactly one account.  Tags keep the
// order the user gave them; how they are serialized is up to the storage
// layer.
type Word struct {
	ID             uint64    // words.id
	OwnerID        uint64    // words.owner_id (references accounts.id)
	Word           string    // words.word
	Definition     string    // words.definition
	Example        string    // words.example
	Language       string    // words.language
	SourceLanguage string    // words.source_language
	Tags           []string  // words.tags
	CreatedAt      time.Time // words.created_at
}

// WordInput carries the caller-editable fields of a Word for create and
// update.
type WordInput struct {
	Word           string
	Definition     string
	Example        string
	Language       string
	SourceLanguage string
	Tags           []string
}

// WordFilter narrows a listing.  Language is matched exactly when set.
type WordFilter struct {
	Language string
	Skip     int
	Limit    int
}

// Stats aggregates one account's vocabulary.
type Stats struct {
	TotalWords    int
	Languages     []string
	LanguageCount int
}

package handler

import (
	"time"

	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/service"
)

// ----- requests -----

type registerReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wordReq struct {
	Word           string   `json:"word"`
	Definition     string   `json:"definition"`
	Example        string   `json:"example"`
	Language       string   `json:"language"`
	SourceLanguage string   `json:"source_language"`
	Tags           []string `json:"tags"`
}

func (r wordReq) input() model.WordInput {
	return model.WordInput{
		Word:           r.Word,
		Definition:     r.Definition,
		Example:        r.Example,
		Language:       r.Language,
		SourceLanguage: r.SourceLanguage,
		Tags:           r.Tags,
	}
}

// ----- responses -----

// userResp is the public view of an account; it never carries the password
// hash.
type userResp struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(a *model.Account) userResp {
	return userResp{ID: a.ID, Email: a.Email, Username: a.Username, IsActive: a.IsActive, CreatedAt: a.CreatedAt}
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userResp  `json:"user"`
}

func toToken(s *service.Session) tokenResp {
	return tokenResp{
		AccessToken: s.Token.Token,
		TokenType:   "bearer",
		ExpiresAt:   s.Token.Exp,
		User:        toUser(s.Account),
	}
}

type wordResp struct {
	ID             uint64    `json:"id"`
	OwnerID        uint64    `json:"owner_id"`
	Word           string    `json:"word"`
	Definition     string    `json:"definition"`
	Example        string    `json:"example"`
	Language       string    `json:"language"`
	SourceLanguage string    `json:"source_language"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
}

func toWord(w *model.Word) wordResp {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return wordResp{
		ID:             w.ID,
		OwnerID:        w.OwnerID,
		Word:           w.Word,
		Definition:     w.Definition,
		Example:        w.Example,
		Language:       w.Language,
		SourceLanguage: w.SourceLanguage,
		Tags:           tags,
		CreatedAt:      w.CreatedAt,
	}
}

type statsResp struct {
	TotalWords    int      `json:"total_words"`
	Languages     []string `json:"languages"`
	LanguageCount int      `json:"language_count"`
}

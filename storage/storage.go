package storage

import (
	"log/slog"

	"med-lt/models"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// ChatHistory keeps consultation sessions across runs.
type ChatHistory interface {
	ListChats() ([]models.Chat, error)
	GetChatByID(id uint32) (*models.Chat, error)
	GetLastChat() (*models.Chat, error)
	ChatGetMaxID() (uint32, error)
	UpsertChat(chat *models.Chat) (*models.Chat, error)
	RemoveChat(id uint32) error
}

type ProviderSQL struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (p ProviderSQL) ListChats() ([]models.Chat, error) {
	resp := []models.Chat{}
	err := p.db.Select(&resp, "SELECT * FROM chats;")
	return resp, err
}

func (p ProviderSQL) GetChatByID(id uint32) (*models.Chat, error) {
	resp := models.Chat{}
	err := p.db.Get(&resp, "SELECT * FROM chats WHERE id=$1;", id)
	return &resp, err
}

func (p ProviderSQL) GetLastChat() (*models.Chat, error) {
	resp := models.Chat{}
	err := p.db.Get(&resp, "SELECT * FROM chats ORDER BY updated_at DESC LIMIT 1;")
	return &resp, err
}

func (p ProviderSQL) ChatGetMaxID() (uint32, error) {
	var id uint32
	err := p.db.Get(&id, "SELECT COALESCE(MAX(id), 0) FROM chats;")
	return id, err
}

func (p ProviderSQL) UpsertChat(chat *models.Chat) (*models.Chat, error) {
	query := `
        INSERT OR REPLACE INTO chats (id, name, msgs, created_at, updated_at)
        VALUES (:id, :name, :msgs, :created_at, :updated_at)
        RETURNING *;`
	stmt, err := p.db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var resp models.Chat
	err = stmt.Get(&resp, chat)
	return &resp, err
}

func (p ProviderSQL) RemoveChat(id uint32) error {
	query := "DELETE FROM chats WHERE id = $1;"
	_, err := p.db.Exec(query, id)
	return err
}

func NewProviderSQL(dbPath string, logger *slog.Logger) (ChatHistory, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	p := ProviderSQL{db: db, logger: logger}
	if err := p.Migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

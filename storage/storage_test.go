package storage

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"med-lt/models"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

func testProvider(t *testing.T) ProviderSQL {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open SQLite in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	p := ProviderSQL{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := p.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return p
}

func TestChatHistory(t *testing.T) {
	provider := testProvider(t)
	chats, err := provider.ListChats()
	if err != nil {
		t.Fatalf("Failed to list chats: %v", err)
	}
	if len(chats) != 0 {
		t.Errorf("Expected 0 chats, got %d", len(chats))
	}
	chat := &models.Chat{
		ID:        1,
		Name:      "1_consultation",
		Msgs:      `[{"role":"user","content":"Bonjour"}]`,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	updatedChat, err := provider.UpsertChat(chat)
	if err != nil {
		t.Fatalf("Failed to upsert chat: %v", err)
	}
	if updatedChat == nil {
		t.Fatal("Expected non-nil chat after upsert")
	}
	fetchedChat, err := provider.GetChatByID(chat.ID)
	if err != nil {
		t.Fatalf("Failed to get chat by ID: %v", err)
	}
	if fetchedChat.Name != chat.Name {
		t.Errorf("Expected chat name %s, got %s", chat.Name, fetchedChat.Name)
	}
	history, err := fetchedChat.ToHistory()
	if err != nil {
		t.Fatalf("Failed to decode stored history: %v", err)
	}
	if len(history) != 1 || history[0].Content != "Bonjour" {
		t.Errorf("Unexpected history: %v", history)
	}
	maxID, err := provider.ChatGetMaxID()
	if err != nil {
		t.Fatalf("Failed to get max id: %v", err)
	}
	if maxID != 1 {
		t.Errorf("Expected max id 1, got %d", maxID)
	}
	last, err := provider.GetLastChat()
	if err != nil {
		t.Fatalf("Failed to get last chat: %v", err)
	}
	if last.ID != chat.ID {
		t.Errorf("Expected last chat id %d, got %d", chat.ID, last.ID)
	}
	if err := provider.RemoveChat(chat.ID); err != nil {
		t.Fatalf("Failed to remove chat: %v", err)
	}
	chats, err = provider.ListChats()
	if err != nil {
		t.Fatalf("Failed to list chats: %v", err)
	}
	if len(chats) != 0 {
		t.Errorf("Expected 0 chats, got %d", len(chats))
	}
}

func TestChatGetMaxIDEmpty(t *testing.T) {
	provider := testProvider(t)
	maxID, err := provider.ChatGetMaxID()
	if err != nil {
		t.Fatalf("Failed to get max id on empty table: %v", err)
	}
	if maxID != 0 {
		t.Errorf("Expected 0, got %d", maxID)
	}
}

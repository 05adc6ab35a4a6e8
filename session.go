package main

import (
	"encoding/json"
	"fmt"
	"time"

	"med-lt/models"
)

// normalizeHistory treats an absent history as an empty one.
func normalizeHistory(history []models.RoleMsg) []models.RoleMsg {
	if history == nil {
		return []models.RoleMsg{}
	}
	return history
}

// ChatTurn appends the user message, sends the whole history as multi-turn
// context and appends the reply. The history is caller-owned; nothing is
// kept on the assistant between turns.
func (a *Assistant) ChatTurn(history []models.RoleMsg, userText string) ([]models.RoleMsg, string, error) {
	history = normalizeHistory(history)
	history = append(history, models.RoleMsg{Role: a.cfg.UserRole, Content: userText})
	reply, err := a.chatComplete(history)
	if err != nil {
		return history, "", err
	}
	history = append(history, models.RoleMsg{Role: a.cfg.AssistantRole, Content: reply})
	return history, reply, nil
}

func historyToJSON(msgs []models.RoleMsg) (string, error) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// saveChat upserts the session under the given chat record.
func (a *Assistant) saveChat(chat *models.Chat, msgs []models.RoleMsg) error {
	sjson, err := historyToJSON(msgs)
	if err != nil {
		return err
	}
	chat.Msgs = sjson
	chat.UpdatedAt = time.Now()
	updated, err := a.store.UpsertChat(chat)
	if err != nil {
		return err
	}
	chat.ID = updated.ID
	return nil
}

func (a *Assistant) newChat() *models.Chat {
	id, err := a.store.ChatGetMaxID()
	if err != nil {
		a.logger.Error("failed to get chat id", "error", err)
	}
	now := time.Now()
	return &models.Chat{
		ID:        id + 1,
		Name:      fmt.Sprintf("%d_%v", id+1, now.Unix()),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// loadLastChat resumes the most recent consultation or starts a fresh one.
func (a *Assistant) loadLastChat() (*models.Chat, []models.RoleMsg) {
	chat, err := a.store.GetLastChat()
	if err != nil {
		a.logger.Warn("no previous chat; starting new", "error", err)
		return a.newChat(), a.defaultStarter()
	}
	history, err := chat.ToHistory()
	if err != nil {
		a.logger.Warn("failed to decode stored chat; starting new", "chat", chat.Name, "error", err)
		return a.newChat(), a.defaultStarter()
	}
	if len(history) == 0 {
		history = a.defaultStarter()
	}
	return chat, history
}

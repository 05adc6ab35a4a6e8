package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"med-lt/models"
	"med-lt/prompts"
)

// ErrInference marks an unreachable or erroring model endpoint. No retry
// here; the caller decides how to surface it.
var ErrInference = errors.New("inference request failed")

// renderAndInvoke renders the named template with subs and sends the result
// as a fresh single-turn exchange. Blocking; the reply comes back trimmed.
func (a *Assistant) renderAndInvoke(tplName string, subs map[string]string) (string, error) {
	tpl, err := a.prompts.Get(tplName)
	if err != nil {
		return "", err
	}
	prompt := prompts.Render(tpl, subs)
	a.logger.Debug("rendered prompt", "template", tplName, "len", len(prompt))
	return a.chatComplete([]models.RoleMsg{{Role: "user", Content: prompt}})
}

// chatComplete posts the messages to the chat endpoint and returns the
// assistant reply.
func (a *Assistant) chatComplete(msgs []models.RoleMsg) (string, error) {
	body := models.ChatBody{
		Model:    a.cfg.ModelName,
		Stream:   false,
		Messages: msgs,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to form llm request: %w", err)
	}
	resp, err := a.httpClient.Post(a.cfg.ChatAPI, "application/json", bytes.NewReader(data)) //nolint:noctx
	if err != nil {
		a.logger.Error("llm request failed", "link", a.cfg.ChatAPI, "error", err)
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Error("llm bad status", "link", a.cfg.ChatAPI, "status", resp.Status)
		return "", fmt.Errorf("%w: status %s", ErrInference, resp.Status)
	}
	llmResp := models.LLMResp{}
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		a.logger.Error("failed to decode llm response", "error", err)
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrInference)
	}
	return strings.TrimSpace(llmResp.Choices[0].Message.Content), nil
}

package models

import (
	"fmt"
	"strings"
)

type RoleMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (m RoleMsg) ToText(i int) string {
	icon := fmt.Sprintf("(%d) <%s>: ", i, m.Role)
	textMsg := fmt.Sprintf("[-:-:b]%s[-:-:-]\n%s\n", icon, m.Content)
	return strings.ReplaceAll(textMsg, "\n\n", "\n")
}

type ChatBody struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Messages []RoleMsg `json:"messages"`
}

// LLMResp is a non-streaming /v1/chat/completions answer.
type LLMResp struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
		Message      struct {
			Content string `json:"content"`
			Role    string `json:"role"`
		} `json:"message"`
	} `json:"choices"`
	Created int    `json:"created"`
	Model   string `json:"model"`
	Object  string `json:"object"`
	Usage   struct {
		CompletionTokens int `json:"completion_tokens"`
		PromptTokens     int `json:"prompt_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	ID string `json:"id"`
}

// TermEntry mirrors one record of the terms document.
// Duplicate fr terms may coexist; lookup takes the first match.
type TermEntry struct {
	Fr         string `json:"fr"`
	Ar         string `json:"ar"`
	En         string `json:"en"`
	Definition string `json:"definition"`
}

func (e TermEntry) Card() string {
	return fmt.Sprintf("🇫🇷 %s\n🇸🇦 %s\n🇬🇧 %s\n\n📄 %s",
		e.Fr, e.Ar, e.En, e.Definition)
}

type Profile struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ProfileDoc is the wrapper shape of the profiles document.
type ProfileDoc struct {
	Profiles []Profile `json:"profiles"`
}

type AudioFormat string

const (
	AFMP3 AudioFormat = "mp3"
	AFWAV AudioFormat = "wav"
)

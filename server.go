package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"med-lt/kb"
	"med-lt/models"
)

type actionReq struct {
	Action Action `json:"action"`
	Text   string `json:"text"`
}

type actionResp struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

type chatReq struct {
	Messages []models.RoleMsg `json:"messages"`
	Text     string           `json:"text"`
}

type chatResp struct {
	Messages []models.RoleMsg `json:"messages"`
	Reply    string           `json:"reply"`
}

// ListenToRequests serves the assistant over a small local API; each request
// runs one synchronous pipeline, same as a UI event.
func (a *Assistant) ListenToRequests(port string) error {
	mux := http.NewServeMux()
	server := &http.Server{
		Addr:         "localhost:" + port,
		Handler:      mux,
		ReadTimeout:  time.Second * 5,
		WriteTimeout: time.Minute * 5, // model calls block
	}
	mux.HandleFunc("GET /ping", a.pingHandler)
	mux.HandleFunc("POST /action", a.actionHandler)
	mux.HandleFunc("POST /adapt", a.adaptHandler)
	mux.HandleFunc("POST /chat", a.chatHandler)
	fmt.Println("listening", "addr", server.Addr)
	return server.ListenAndServe()
}

func (a *Assistant) pingHandler(w http.ResponseWriter, req *http.Request) {
	if _, err := w.Write([]byte("pong")); err != nil {
		a.logger.Error("server ping", "error", err)
	}
}

func (a *Assistant) actionHandler(w http.ResponseWriter, req *http.Request) {
	body := actionReq{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := a.Dispatch(body.Action, body.Text)
	resp := actionResp{Result: result}
	switch {
	case err == nil:
	case errors.Is(err, kb.ErrPersist):
		// parsed values still went out in Result
		resp.Error = err.Error()
	case errors.Is(err, ErrInference):
		resp.Error = "Le modèle local est injoignable. Réessayez plus tard."
		a.logger.Error("action failed", "action", body.Action, "error", err)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.writeJSON(w, resp)
}

func (a *Assistant) adaptHandler(w http.ResponseWriter, req *http.Request) {
	body := struct {
		Text    string `json:"text"`
		Profile string `json:"profile"`
	}{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := a.AdaptToProfile(body.Text, body.Profile)
	resp := actionResp{Result: result}
	if err != nil {
		resp.Error = "Le modèle local est injoignable. Réessayez plus tard."
		a.logger.Error("adapt failed", "error", err)
	}
	a.writeJSON(w, resp)
}

func (a *Assistant) chatHandler(w http.ResponseWriter, req *http.Request) {
	body := chatReq{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	history, reply, err := a.ChatTurn(body.Messages, body.Text)
	if err != nil {
		a.logger.Error("chat turn failed", "error", err)
		http.Error(w, "inference failed", http.StatusBadGateway)
		return
	}
	a.writeJSON(w, chatResp{Messages: history, Reply: reply})
}

func (a *Assistant) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		a.logger.Error("failed to write response", "error", err)
	}
}

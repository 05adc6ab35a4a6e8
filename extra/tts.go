//go:build extra
// +build extra

package extra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"med-lt/config"
	"med-lt/models"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/neurosnap/sentences/english"
)

type Orator interface {
	Speak(text string) error
	Stop()
}

// NewOrator picks the voice provider from config: a local TTS server by
// default, google translate as a network fallback.
func NewOrator(log *slog.Logger, cfg *config.Config) Orator {
	switch strings.ToUpper(cfg.TTS_PROVIDER) {
	case "GOOGLE":
		language := cfg.TTS_LANGUAGE
		if language == "" {
			language = "fr"
		}
		speech := &google_translate_tts.Speech{
			Folder:   os.TempDir() + "/med-lt-tts",
			Language: language,
			Speed:    cfg.TTS_SPEED,
			Handler:  &handlers.Beep{},
		}
		return &GoogleOrator{logger: log, speech: speech}
	default:
		return &ServerOrator{
			logger: log,
			URL:    cfg.TTS_URL,
			Format: models.AFMP3,
			Speed:  cfg.TTS_SPEED,
			Lang:   cfg.TTS_LANGUAGE,
		}
	}
}

// splitSentences chunks text so playback starts before the whole result is
// synthesized; the tokenizer copes well enough with french punctuation.
func splitSentences(text string) []string {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return []string{text}
	}
	sentences := tokenizer.Tokenize(text)
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ServerOrator speaks through a local HTTP TTS server returning mp3.
type ServerOrator struct {
	logger        *slog.Logger
	URL           string
	Format        models.AudioFormat
	Speed         float32
	Lang          string
	currentStream *beep.Ctrl
}

func (o *ServerOrator) requestSound(text string) (io.ReadCloser, error) {
	payload := map[string]interface{}{
		"input":           text,
		"response_format": o.Format,
		"speed":           o.Speed,
		"lang_code":       o.Lang,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequest("POST", o.URL, bytes.NewBuffer(payloadBytes)) //nolint:noctx
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (o *ServerOrator) Speak(text string) error {
	for _, sentence := range splitSentences(text) {
		body, err := o.requestSound(sentence)
		if err != nil {
			o.logger.Error("tts request failed", "error", err)
			return err
		}
		err = o.play(body)
		body.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *ServerOrator) play(body io.ReadCloser) error {
	streamer, format, err := mp3.Decode(body)
	if err != nil {
		o.logger.Error("mp3 decode failed", "error", err)
		return fmt.Errorf("mp3 decode failed: %w", err)
	}
	defer streamer.Close()
	// speaker complains about repeated init; playback still works
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		o.logger.Debug("failed to init speaker", "error", err)
	}
	done := make(chan bool)
	o.currentStream = &beep.Ctrl{Streamer: beep.Seq(streamer, beep.Callback(func() {
		close(done)
		o.currentStream = nil
	})), Paused: false}
	speaker.Play(o.currentStream)
	<-done
	return nil
}

func (o *ServerOrator) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	if o.currentStream != nil {
		o.currentStream.Streamer = nil
	}
}

// GoogleOrator speaks through google translate voices.
type GoogleOrator struct {
	logger        *slog.Logger
	speech        *google_translate_tts.Speech
	currentStream *beep.Ctrl
}

func (o *GoogleOrator) Speak(text string) error {
	for _, sentence := range splitSentences(text) {
		if err := o.speakOne(sentence); err != nil {
			return err
		}
	}
	return nil
}

func (o *GoogleOrator) speakOne(text string) error {
	reader, err := o.speech.GenerateSpeech(text)
	if err != nil {
		o.logger.Error("generate speech failed", "error", err)
		return fmt.Errorf("generate speech failed: %w", err)
	}
	streamer, format, err := mp3.Decode(io.NopCloser(reader))
	if err != nil {
		o.logger.Error("mp3 decode failed", "error", err)
		return fmt.Errorf("mp3 decode failed: %w", err)
	}
	defer streamer.Close()
	playbackStreamer := beep.Streamer(streamer)
	speed := o.speech.Speed
	if speed <= 0 {
		speed = 1.0
	}
	if speed != 1.0 {
		playbackStreamer = beep.ResampleRatio(3, float64(speed), streamer)
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		o.logger.Debug("failed to init speaker", "error", err)
	}
	done := make(chan bool)
	o.currentStream = &beep.Ctrl{Streamer: beep.Seq(playbackStreamer, beep.Callback(func() {
		close(done)
		o.currentStream = nil
	})), Paused: false}
	speaker.Play(o.currentStream)
	<-done
	return nil
}

func (o *GoogleOrator) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	if o.currentStream != nil {
		o.currentStream.Streamer = nil
	}
	if o.speech != nil {
		_ = o.speech.Stop()
	}
}

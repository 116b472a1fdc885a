// Package telegram answers bot updates: a document or photo comes in, a
// plain-language summary goes back.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"doc-digest/api/internal/extract"
	"doc-digest/api/internal/handle"
	"doc-digest/api/internal/util"
)

const (
	// Telegram rejects messages over 4096 characters.
	maxMessageRunes = 4000
	// getFile only serves files up to 20 MB.
	maxDownload    = 20 << 20
	processTimeout = 2 * time.Minute
)

var errFileTooLarge = errors.New("file is larger than 20 MB")

type Router struct {
	Bot        *tgbotapi.BotAPI
	Extractor  handle.Extractor
	Summarizer handle.Summarizer

	// FileEndpoint is a printf pattern taking the token and file path.
	// Defaults to tgbotapi.FileEndpoint.
	FileEndpoint string
	HTTPClient   *http.Client
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}

	var (
		fileID string
		size   int
		ct     string
	)
	switch {
	case msg.Document != nil:
		fileID, size, ct = msg.Document.FileID, msg.Document.FileSize, msg.Document.MimeType
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		fileID, size, ct = ph.FileID, ph.FileSize, "image/jpeg"
	default:
		r.send(cid, usageText)
		return
	}
	if size > maxDownload {
		r.send(cid, "File is too large for the bot (20 MB max).")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	data, err := r.fetch(ctx, fileID)
	if err != nil {
		log.Printf("telegram: chat %d: download %s: %v", cid, fileID, err)
		r.send(cid, "Could not download the file: "+err.Error())
		return
	}
	for _, reply := range r.process(ctx, data, util.PickMIME(ct, data)) {
		r.send(cid, reply)
	}
}

const usageText = "Send a PDF or an image (as a photo or a file) and I will reply with a short summary of its text.\nCommands: /start, /health"

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.send(msg.Chat.ID, usageText)
	case "health":
		r.send(msg.Chat.ID, "OK")
	default:
		r.send(msg.Chat.ID, "Unknown command")
	}
}

// process runs extraction then analysis and returns the replies to send,
// using the same error strings as the HTTP API.
func (r *Router) process(ctx context.Context, data []byte, contentType string) []string {
	text, err := r.Extractor.Extract(ctx, data, contentType)
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return []string{"Unsupported file type"}
	case err != nil:
		log.Printf("telegram: extract %s: %v", contentType, err)
		return []string{"Failed to extract text: " + err.Error()}
	}

	summary, err := r.Summarizer.Summarize(ctx, text)
	if err != nil {
		log.Printf("telegram: summarize: %v", err)
		return []string{handle.AnalysisMessage(err)}
	}
	return []string{util.Truncate("Summary:\n\n"+summary, maxMessageRunes)}
}

func (r *Router) fetch(ctx context.Context, fileID string) ([]byte, error) {
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	pattern := r.FileEndpoint
	if pattern == "" {
		pattern = tgbotapi.FileEndpoint
	}
	return r.download(ctx, fmt.Sprintf(pattern, r.Bot.Token, file.FilePath))
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownload {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, util.Truncate(text, maxMessageRunes))
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}

package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"doc-digest/api/internal/analyze"
	"doc-digest/api/internal/extract"
	"doc-digest/api/internal/gemini"
)

type fakeExtractor struct {
	gotType string
	gotData string
	out     string
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, data []byte, ct string) (string, error) {
	f.gotType, f.gotData = ct, string(data)
	return f.out, f.err
}

type fakeSummarizer struct {
	got string
	out string
	err error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.got = text
	return f.out, f.err
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name string
		ext  *fakeExtractor
		sum  *fakeSummarizer
		want string
	}{
		{"summary", &fakeExtractor{out: "body"}, &fakeSummarizer{out: "Hello summary"}, "Summary:\n\nHello summary"},
		{"unsupported", &fakeExtractor{err: extract.ErrUnsupportedType}, &fakeSummarizer{}, "Unsupported file type"},
		{"extract failure", &fakeExtractor{err: errors.New("bad xref")}, &fakeSummarizer{}, "Failed to extract text: bad xref"},
		{"empty text", &fakeExtractor{out: " "}, &fakeSummarizer{err: analyze.ErrEmptyText}, "Empty text received"},
		{"missing key", &fakeExtractor{out: "x"}, &fakeSummarizer{err: gemini.ErrMissingAPIKey}, "Gemini API key missing in environment variables"},
		{"upstream", &fakeExtractor{out: "x"}, &fakeSummarizer{err: &gemini.StatusError{Code: 503}}, "Gemini API error: 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Router{Extractor: tt.ext, Summarizer: tt.sum}
			got := r.process(context.Background(), []byte("data"), "application/pdf")
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("process() = %q, want %q", got, tt.want)
			}
		})
	}
}

// fakeTelegram serves the few Bot API methods the router uses and records
// the texts it was asked to send.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
	file string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"digest","username":"digest_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/getFile"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"file_id":"f1","file_unique_id":"u1","file_size":9,"file_path":"documents/file_1.pdf"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm.Get("text"))
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	case strings.HasPrefix(r.URL.Path, "/file/"):
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, f.file)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeTelegram) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newRouter(t *testing.T, tg *fakeTelegram, ext *fakeExtractor, sum *fakeSummarizer) *Router {
	t.Helper()
	srv := httptest.NewServer(tg)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient: %v", err)
	}
	return &Router{
		Bot:          bot,
		Extractor:    ext,
		Summarizer:   sum,
		FileEndpoint: srv.URL + "/file/bot%s/%s",
		HTTPClient:   srv.Client(),
	}
}

func TestHandleDocument(t *testing.T) {
	tg := &fakeTelegram{file: "%PDF-1.4 x"}
	ext := &fakeExtractor{out: "page\n"}
	sum := &fakeSummarizer{out: "It is a page."}
	r := newRouter(t, tg, ext, sum)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "a.pdf"},
	}})

	if ext.gotType != "application/pdf" || ext.gotData != "%PDF-1.4 x" {
		t.Fatalf("extractor got %q / %q", ext.gotType, ext.gotData)
	}
	if sum.got != "page\n" {
		t.Fatalf("summarizer got %q", sum.got)
	}
	if got := tg.texts(); len(got) != 1 || got[0] != "Summary:\n\nIt is a page." {
		t.Fatalf("sent = %q", got)
	}
}

func TestHandlePhotoDeclaredJPEG(t *testing.T) {
	tg := &fakeTelegram{file: "%PDF-looks-like-pdf"}
	ext := &fakeExtractor{out: "ocr"}
	r := newRouter(t, tg, ext, &fakeSummarizer{out: "s"})

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "f1", Width: 1280, Height: 960},
		},
	}})
	if ext.gotType != "image/jpeg" {
		t.Fatalf("photo declared as %q", ext.gotType)
	}
}

func TestHandleTooLarge(t *testing.T) {
	tg := &fakeTelegram{}
	ext := &fakeExtractor{}
	r := newRouter(t, tg, ext, &fakeSummarizer{})

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "f1", MimeType: "application/pdf", FileSize: maxDownload + 1},
	}})
	if ext.gotType != "" {
		t.Fatalf("oversized file reached the extractor")
	}
	if got := tg.texts(); len(got) != 1 || !strings.Contains(got[0], "too large") {
		t.Fatalf("sent = %q", got)
	}
}

func TestHandlePlainTextGetsUsage(t *testing.T) {
	tg := &fakeTelegram{}
	r := newRouter(t, tg, &fakeExtractor{}, &fakeSummarizer{})

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Text: "hi",
	}})
	if got := tg.texts(); len(got) != 1 || got[0] != usageText {
		t.Fatalf("sent = %q", got)
	}
}

func TestHandleCommands(t *testing.T) {
	tg := &fakeTelegram{}
	r := newRouter(t, tg, &fakeExtractor{}, &fakeSummarizer{})

	for _, text := range []string{"/start", "/health", "/nope"} {
		r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
			Chat:     &tgbotapi.Chat{ID: 42},
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		}})
	}
	want := []string{usageText, "OK", "Unknown command"}
	got := tg.texts()
	if len(got) != len(want) {
		t.Fatalf("sent = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reply %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDownloadRejectsOversizeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := maxDownload
		if r.URL.Query().Get("over") != "" {
			n++
		}
		_, _ = w.Write(make([]byte, n))
	}))
	t.Cleanup(srv.Close)
	r := &Router{HTTPClient: srv.Client()}

	data, err := r.download(context.Background(), srv.URL)
	if err != nil || len(data) != maxDownload {
		t.Fatalf("download at the limit = %d bytes, %v", len(data), err)
	}
	if _, err := r.download(context.Background(), srv.URL+"?over=1"); !errors.Is(err, errFileTooLarge) {
		t.Fatalf("err = %v, want errFileTooLarge", err)
	}
}

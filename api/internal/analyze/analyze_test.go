package analyze

import (
	"context"
	"errors"
	"testing"
)

type fakeGen struct {
	calls  int
	prompt string
	out    string
	err    error
}

func (f *fakeGen) Name() string     { return "fake" }
func (f *fakeGen) GetModel() string { return "m1" }
func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.out, f.err
}

func TestBuildPrompt(t *testing.T) {
	want := "\nGive a short, simple summary of the content below.\n" +
		"Explain what is going on in 5 lines maximum.\n" +
		"Use easy words so anyone can understand.\n\n" +
		"Text:\n  raw <text>  \n"
	if got := BuildPrompt("  raw <text>  "); got != want {
		t.Fatalf("BuildPrompt() = %q, want %q", got, want)
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t \r\n"} {
		g := &fakeGen{}
		_, err := New(g).Summarize(context.Background(), in)
		if !errors.Is(err, ErrEmptyText) {
			t.Fatalf("Summarize(%q) err = %v, want ErrEmptyText", in, err)
		}
		if g.calls != 0 {
			t.Fatalf("Summarize(%q) made %d calls", in, g.calls)
		}
	}
}

func TestSummarizeDelegates(t *testing.T) {
	g := &fakeGen{out: "Hello summary"}
	s := New(g)
	got, err := s.Summarize(context.Background(), "invoice total 42")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Hello summary" {
		t.Fatalf("Summarize() = %q", got)
	}
	if g.prompt != BuildPrompt("invoice total 42") {
		t.Fatalf("prompt = %q", g.prompt)
	}
	if s.Model() != "fake/m1" {
		t.Fatalf("Model() = %q", s.Model())
	}
}

func TestSummarizePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&fakeGen{err: boom}).Summarize(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

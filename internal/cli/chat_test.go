package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/khanglvm/speakeasy/internal/knowledge"
)

func TestRunChat(t *testing.T) {
	eng := engine.New(knowledge.NewMemoryStore(), nil)
	if err := eng.Learn("hello", "hi there", 1); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	in := strings.NewReader("hello\n\nsomething else\n/quit\nnever read\n")
	if err := runChat(eng, in, &out, false); err != nil {
		t.Fatalf("runChat failed: %v", err)
	}

	got := out.String()
	if strings.Count(got, "hi there\n") != 2 {
		t.Errorf("expected two replies, got %q", got)
	}
	if strings.Contains(got, "rate") {
		t.Errorf("feedback prompt shown outside train mode: %q", got)
	}
}

func TestRunChatTrain(t *testing.T) {
	store := knowledge.NewMemoryStore()
	eng := engine.New(store, nil)

	var out bytes.Buffer
	in := strings.NewReader("hello\n=hi there\nhello\nn\nhello\nmaybe\nhello\n\n")
	if err := runChat(eng, in, &out, true); err != nil {
		t.Fatalf("runChat failed: %v", err)
	}

	// The first reply echoes; the correction is learned; the second reply
	// uses it and is rated down.
	k, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	r, ok := k.Get("hello")
	if !ok {
		t.Fatal("prompt not learned")
	}
	e, ok := r.Get("hi there")
	if !ok {
		t.Fatal("correction not learned")
	}
	if e != (knowledge.Entry{Score: 1, Trials: 2}) {
		t.Errorf("entry = %+v, want {1 2}", e)
	}
	if r.Len() != 1 {
		t.Errorf("responses = %v, want only the correction", r.Keys())
	}
	if !strings.Contains(out.String(), "unrecognized feedback") {
		t.Errorf("bad feedback not reported: %q", out.String())
	}
}

func TestParseFeedback(t *testing.T) {
	tests := []struct {
		in      string
		want    feedback
		wantErr bool
	}{
		{"", feedback{skip: true}, false},
		{"   ", feedback{skip: true}, false},
		{"y", feedback{score: 1}, false},
		{"YES", feedback{score: 1}, false},
		{"+", feedback{score: 1}, false},
		{"n", feedback{score: 0}, false},
		{"-", feedback{score: 0}, false},
		{"0.75", feedback{score: 0.75}, false},
		{"3", feedback{score: 3}, false},
		{"= hi there ", feedback{score: 1, correction: "hi there"}, false},
		{"=", feedback{}, true},
		{"maybe", feedback{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFeedback(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFeedback(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseFeedback(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate keeps tests away from the user's config file and environment.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"SPEAKEASY_STORE_BACKEND",
		"SPEAKEASY_STORE_PATH",
		"SPEAKEASY_LOG_LEVEL",
		"SPEAKEASY_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestLearnAndReply(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "kb.json")

	out := mustExecute(t, "learn", "hello world", "hi", "--store", store)
	if !strings.Contains(out, "Learned") {
		t.Errorf("learn output = %q", out)
	}

	for _, prompt := range []string{"hello", "world", "hello world"} {
		out = mustExecute(t, "reply", prompt, "--store", store)
		if out != "hi\n" {
			t.Errorf("reply %q = %q, want %q", prompt, out, "hi\n")
		}
	}
}

func TestReplyEchoesOnEmptyStore(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "kb.json")

	out := mustExecute(t, "reply", "anyone there?", "--store", store)
	if out != "anyone there?\n" {
		t.Errorf("reply = %q", out)
	}

	out = mustExecute(t, "reply", "anyone there?", "--explain", "--store", store)
	if !strings.Contains(out, "No candidates") {
		t.Errorf("explain = %q", out)
	}
}

func TestLearnClampsScoreFlag(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "kb.json")

	mustExecute(t, "learn", "p", "r", "--score", "7", "--store", store)
	mustExecute(t, "learn", "p", "r", "--score=-2", "--store", store)

	out := mustExecute(t, "export", "--store", store)
	if out != `{"p":{"r":[1,2]}}`+"\n" {
		t.Errorf("export = %q", out)
	}
}

func TestReplyExplainJSON(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "kb.json")

	mustExecute(t, "learn", "hello", "go away", "--score", "0", "--store", store)
	mustExecute(t, "learn", "hello", "hi there", "--store", store)

	out := mustExecute(t, "reply", "hello", "--explain", "--json", "--store", store)

	var candidates []struct {
		Response string     `json:"response"`
		Entry    [2]float64 `json:"entry"`
		Estimate float64    `json:"estimate"`
	}
	if err := json.Unmarshal([]byte(out), &candidates); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].Response != "hi there" {
		t.Errorf("best candidate = %q, want hi there", candidates[0].Response)
	}
	if candidates[0].Estimate <= candidates[1].Estimate {
		t.Errorf("candidates not ranked: %+v", candidates)
	}
}

func TestImportExportAcrossBackends(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	source := filepath.Join(dir, "source.json")
	doc := `{"hello":{"hi there":[3.5,4],"go away":[0,1]},"bye":{"later":[1,1]}}`
	if err := os.WriteFile(source, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	for _, backend := range []string{"json", "sqlite", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			store := filepath.Join(dir, "kb."+backend)

			out := mustExecute(t, "import", source, "--backend", backend, "--store", store)
			if !strings.Contains(out, "Imported 2 prompt(s), 3 response(s)") {
				t.Errorf("import output = %q", out)
			}

			out = mustExecute(t, "export", "--backend", backend, "--store", store)
			if out != doc+"\n" {
				t.Errorf("export = %q, want %q", out, doc)
			}

			out = mustExecute(t, "reply", "hello", "--backend", backend, "--store", store)
			if out != "hi there\n" {
				t.Errorf("reply = %q", out)
			}
		})
	}
}

func TestImportRejectsMalformedFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	source := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(source, []byte(`{"a": {"b": [1]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "import", source, "--store", filepath.Join(dir, "kb.json"))
	if err == nil {
		t.Fatal("expected import of malformed file to fail")
	}
}

func TestExportToFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	store := filepath.Join(dir, "kb.json")
	target := filepath.Join(dir, "out.json")

	mustExecute(t, "learn", "a", "b", "--store", store)
	mustExecute(t, "export", "--pretty", "-o", target, "--store", store)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	want := "{\n  \"a\": {\n    \"b\": [\n      1,\n      1\n    ]\n  }\n}\n"
	if string(data) != want {
		t.Errorf("export file = %q, want %q", data, want)
	}
}

func TestStatsJSON(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "kb.db")

	mustExecute(t, "learn", "a", "x", "--backend", "sqlite", "--store", store)
	mustExecute(t, "learn", "a", "x", "--score", "0.5", "--backend", "sqlite", "--store", store)
	mustExecute(t, "learn", "b", "y", "--backend", "sqlite", "--store", store)

	out := mustExecute(t, "stats", "--json", "--backend", "sqlite", "--store", store)

	var st struct {
		Backend   string  `json:"backend"`
		Prompts   int     `json:"prompts"`
		Responses int     `json:"responses"`
		Trials    int     `json:"trials"`
		Score     float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if st.Backend != "sqlite" || st.Prompts != 2 || st.Responses != 2 || st.Trials != 3 || st.Score != 2.5 {
		t.Errorf("stats = %+v", st)
	}
}

func TestStoreFromEnvironment(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "env.bolt")
	t.Setenv("SPEAKEASY_STORE_BACKEND", "bolt")
	t.Setenv("SPEAKEASY_STORE_PATH", store)

	mustExecute(t, "learn", "ping", "pong")
	if _, err := os.Stat(store); err != nil {
		t.Fatalf("store not created at env path: %v", err)
	}
	if out := mustExecute(t, "reply", "ping"); out != "pong\n" {
		t.Errorf("reply = %q", out)
	}
}

func TestUnknownBackendFlag(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "reply", "x", "--backend", "redis"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestVersionJSON(t *testing.T) {
	out := mustExecute(t, "version", "--json")

	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info["version"] == "" || info["goVersion"] == "" {
		t.Errorf("version info = %v", info)
	}
}

func TestDatabaseBackendsIgnoreJSONStoreInWorkingDir(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	mustExecute(t, "learn", "hello", "from json")

	for _, tc := range []struct{ backend, file string }{
		{"sqlite", "speakeasy_data.db"},
		{"bolt", "speakeasy_data.bolt"},
	} {
		t.Run(tc.backend, func(t *testing.T) {
			mustExecute(t, "learn", "hello", "from "+tc.backend, "--backend", tc.backend)
			if _, err := os.Stat(filepath.Join(dir, tc.file)); err != nil {
				t.Fatalf("expected %s to be created: %v", tc.file, err)
			}
			if out := mustExecute(t, "reply", "hello", "--backend", tc.backend); out != "from "+tc.backend+"\n" {
				t.Errorf("reply = %q", out)
			}
		})
	}

	if out := mustExecute(t, "reply", "hello"); out != "from json\n" {
		t.Errorf("json store changed: reply = %q", out)
	}
}

package main

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Mavwarf/soundboard/internal/config"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errb.String(), err
}

// writeConfig saves a default config with tone buttons into a temp dir
// and returns its path.
func writeConfig(t *testing.T, edit func(*config.Config)) string {
	t.Helper()
	t.Setenv("APPDATA", t.TempDir())
	path := filepath.Join(t.TempDir(), "soundboard-config.json")
	cfg := config.Default()
	cfg.Buttons["0"] = "sound:tone:440:20ms"
	cfg.Buttons["1"] = "missing.wav"
	if edit != nil {
		edit(&cfg)
	}
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sb.yaml")
	out, _, err := execute(t, "", "--config", path, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name %s", out, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons["0"] != "sound1.wav" || cfg.GPIOActions["17"] != "play_pause" {
		t.Errorf("written config = %+v", cfg)
	}

	if _, _, err := execute(t, "", "--config", path, "init"); err == nil {
		t.Error("second init without --force succeeded")
	}
	if _, _, err := execute(t, "", "--config", path, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestPlayBuiltinTone(t *testing.T) {
	path := writeConfig(t, nil)
	_, stderr, err := execute(t, "", "--config", path, "--no-audio", "play", "-e", "echo=20", "sound:tone:440:30ms")
	if err != nil {
		t.Fatalf("play: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "playing") || !strings.Contains(stderr, "echo=20") {
		t.Errorf("log missing play line:\n%s", stderr)
	}
}

func TestPlayButtonAndMissingFile(t *testing.T) {
	path := writeConfig(t, nil)
	_, stderr, err := execute(t, "", "--config", path, "--no-audio", "play", "-b", "0", "-b", "1")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 sounds dropped") {
		t.Fatalf("play = %v, want one dropped", err)
	}
	if n := strings.Count(stderr, "level=ERROR"); n != 1 {
		t.Errorf("ERROR lines = %d, want 1:\n%s", n, stderr)
	}

	if _, _, err := execute(t, "", "--config", path, "--no-audio", "play", "-b", "42"); err == nil {
		t.Error("play of an unbound button succeeded")
	}
	if _, _, err := execute(t, "", "--config", path, "--no-audio", "play", "-e", "flanger=3", "sound:beep"); err == nil {
		t.Error("play with an unknown effect succeeded")
	}
}

func TestRunReadsPipedKeys(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) {
		c.Keys = map[string]string{"a": "0"}
	})
	stdout, stderr, err := execute(t, "xa", "--config", path, "--no-audio", "run")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	if strings.Count(stderr, "msg=playing") != 1 {
		t.Errorf("want exactly one play:\n%s", stderr)
	}
	if !strings.Contains(stderr, "msg=\"session ended\"") || !strings.Contains(stderr, "allocations=1") {
		t.Errorf("missing session summary log:\n%s", stderr)
	}
	if !strings.Contains(stdout, "played 1") {
		t.Errorf("summary does not count the play:\n%s", stdout)
	}
	if !strings.Contains(stdout, "ch0") {
		t.Errorf("summary lacks the channel table:\n%s", stdout)
	}
}

func TestRunNothingToListen(t *testing.T) {
	path := writeConfig(t, nil)
	_, _, err := execute(t, "", "--config", path, "--no-audio", "run", "--no-keyboard")
	if err == nil {
		t.Error("run with no inputs succeeded")
	}
}

func TestListShowsBindings(t *testing.T) {
	path := writeConfig(t, nil)
	out, _, err := execute(t, "", "--config", path, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"sound:tone:440:20ms", "missing.wav", "play_pause", "volume_up", "pitch-correction", "sound:chime", "offline"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q", want)
		}
	}
}

func TestSendOffline(t *testing.T) {
	path := writeConfig(t, nil)
	out, _, err := execute(t, "", "--config", path, "send", "next")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "sent next (offline)") {
		t.Errorf("send output = %q", out)
	}
	if _, _, err := execute(t, "", "--config", path, "send", "rewind"); err == nil {
		t.Error("send of an unknown command succeeded")
	}
}

func TestHistory(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Log = true })

	out, _, err := execute(t, "", "--config", path, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No history found") {
		t.Errorf("history before any play = %q", out)
	}

	execute(t, "", "--config", path, "--no-audio", "play", "-b", "0", "-b", "1", "next")

	out, _, err = execute(t, "", "--config", path, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"play", "drop", "missing.wav", "command", "next"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "", "--config", path, "history", "summary", "all")
	if err != nil {
		t.Fatalf("history summary: %v", err)
	}
	if !strings.Contains(out, "Total") {
		t.Errorf("summary = %q", out)
	}

	if _, _, err := execute(t, "", "--config", path, "history", "clear"); err != nil {
		t.Fatalf("history clear: %v", err)
	}
	out, _, _ = execute(t, "", "--config", path, "history")
	if !strings.Contains(out, "History is empty.") {
		t.Errorf("history after clear = %q", out)
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{&buf}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := buf.String(); got != "a\r\nb\r\n" {
		t.Errorf("wrote %q", got)
	}
}

func TestSortedIDs(t *testing.T) {
	m := map[string]string{"10": "", "2": "", "b": "", "a": "", "0": ""}
	got := sortedIDs(m)
	want := []string{"0", "2", "10", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortedIDs = %v, want %v", got, want)
	}
}

func TestFmtNum(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.234"},
		{1234567, "1.234.567"},
		{-4500, "-4.500"},
	}
	for _, tt := range tests {
		if got := fmtNum(tt.n); got != tt.want {
			t.Errorf("fmtNum(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestResolveInitPath(t *testing.T) {
	if got := resolveInitPath("x.json", true); got != "x.json" {
		t.Errorf("explicit path = %q", got)
	}
	if got := resolveInitPath("", true); filepath.Ext(got) != ".yaml" {
		t.Errorf("yaml default = %q", got)
	}
	if got := resolveInitPath("", false); got != config.DefaultPath() {
		t.Errorf("json default = %q", got)
	}
}

package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write hooks.yaml: %v", err)
	}
}

func TestExportContextToEnv(t *testing.T) {
	ctx := ExportContext{
		ExportPath:   "/tmp/orders.md",
		ExportFormat: "markdown",
		RecordCount:  42,
		Filter:       "forecast=high",
		Sort:         "impact desc",
		Timestamp:    time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC),
	}

	want := []string{
		"EO_EXPORT_PATH=/tmp/orders.md",
		"EO_EXPORT_FORMAT=markdown",
		"EO_RECORD_COUNT=42",
		"EO_VIEW_FILTER=forecast=high",
		"EO_VIEW_SORT=impact desc",
		"EO_TIMESTAMP=2025-11-30T10:30:00Z",
	}
	got := ctx.ToEnv()
	if len(got) != len(want) {
		t.Fatalf("ToEnv() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("env[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderNoConfig(t *testing.T) {
	loader := NewLoader(WithDir(t.TempDir()))
	if err := loader.Load(); err != nil {
		t.Fatalf("expected no error for missing config, got: %v", err)
	}
	if loader.HasHooks() {
		t.Error("expected no hooks when config is missing")
	}
}

func TestLoaderWithValidConfig(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  pre-export:
    - name: validate
      command: test -n "$EO_EXPORT_PATH"
      timeout: 5s
  post-export:
    - name: notify
      command: echo done
      timeout: 10
      env:
        CHANNEL: orders
`)

	loader := NewLoader(WithDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loader.HasHooks() {
		t.Fatal("expected hooks to be loaded")
	}

	pre := loader.GetHooks(PreExport)
	if len(pre) != 1 || pre[0].Name != "validate" {
		t.Fatalf("pre-export hooks = %+v", pre)
	}
	if pre[0].Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", pre[0].Timeout)
	}
	if pre[0].OnError != OnErrorFail {
		t.Errorf("pre-export on_error = %q, want fail", pre[0].OnError)
	}

	post := loader.GetHooks(PostExport)
	if len(post) != 1 {
		t.Fatalf("post-export hooks = %+v", post)
	}
	if post[0].Timeout != 10*time.Second {
		t.Errorf("bare seconds timeout = %v", post[0].Timeout)
	}
	if post[0].OnError != OnErrorContinue {
		t.Errorf("post-export on_error = %q, want continue", post[0].OnError)
	}
	if post[0].Env["CHANNEL"] != "orders" {
		t.Errorf("env = %v", post[0].Env)
	}
}

func TestLoaderDefaults(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  post-export:
    - command: ""
    - command: echo one
    - command: echo two
      on_error: sometimes
`)

	loader := NewLoader(WithDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatal(err)
	}
	post := loader.GetHooks(PostExport)
	if len(post) != 2 {
		t.Fatalf("empty command should be dropped, got %d hooks", len(post))
	}
	if post[0].Name != "post-export-2" || post[0].Timeout != DefaultTimeout {
		t.Errorf("defaults not applied: %+v", post[0])
	}
	if post[1].OnError != OnErrorFail {
		t.Errorf("unknown on_error should fall back to fail, got %q", post[1].OnError)
	}
	if w := loader.Warnings(); len(w) != 2 {
		t.Errorf("warnings = %v", w)
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, "hooks: [unclosed")
	if err := NewLoader(WithDir(dir)).Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}

	writeHooksFile(t, dir, "hooks:\n  pre-export:\n    - command: echo\n      timeout: soon\n")
	if err := NewLoader(WithDir(dir)).Load(); err == nil || !strings.Contains(err.Error(), "soon") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestGetHooksUnknownPhase(t *testing.T) {
	loader := NewLoader(WithDir(t.TempDir()))
	if got := loader.GetHooks("mid-export"); got != nil {
		t.Errorf("expected nil before load, got %v", got)
	}
	if loader.Config() == nil {
		t.Error("Config() should never be nil")
	}
}

package debug

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	wasEnabled := Enabled()
	SetEnabled(true)
	SetOutput(log.New(&buf, prefix, 0))
	t.Cleanup(func() {
		SetEnabled(wasEnabled)
		SetOutput(nil)
		if wasEnabled {
			SetEnabled(true)
		}
	})
	return &buf
}

func TestLog(t *testing.T) {
	buf := captureDebug(t)
	Log("loaded %d records", 3)
	LogIf(false, "hidden")
	LogIf(true, "shown")
	Dump("state", struct{ N int }{4})

	out := buf.String()
	for _, want := range []string{"[EO_DEBUG] loaded 3 records", "shown", "state: struct { N int } = {N:4}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("LogIf(false) wrote output:\n%s", out)
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := captureDebug(t)
	LogEnterExit("reload")()
	out := buf.String()
	if !strings.Contains(out, "-> reload") || !strings.Contains(out, "<- reload") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	buf := captureDebug(t)
	SetEnabled(false)
	Log("nothing")
	LogEnterExit("nothing")()
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

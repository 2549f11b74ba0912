package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"stepscan/internal/driver"
)

func newModel(files ...string) *progressModel {
	return NewProgressModel("scan", files, make(chan driver.Event)).(*progressModel)
}

func TestApplyEvent(t *testing.T) {
	m := newModel("a.stp", "b.stp")

	m.applyEvent(driver.Event{File: "a.stp", Stage: driver.StageParse, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("status = %q, want parsing", got)
	}
	m.applyEvent(driver.Event{File: "a.stp", Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.stp", Status: driver.StatusError, Err: errors.New("boom")})
	m.applyEvent(driver.Event{File: "b.stp", Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.stp", Status: driver.StatusDone})

	if m.finished() != 2 || m.failed != 1 {
		t.Fatalf("finished=%d failed=%d", m.finished(), m.failed)
	}
	view := m.View()
	if !strings.Contains(view, "2/2") || !strings.Contains(view, "1 failed") {
		t.Fatalf("view misses counters:\n%s", view)
	}
}

func TestViewFoldsLongLists(t *testing.T) {
	files := make([]string, 30)
	for i := range files {
		files[i] = fmt.Sprintf("part-%02d.stp", i)
	}
	m := newModel(files...)
	m.applyEvent(driver.Event{File: "part-29.stp", Status: driver.StatusError})

	vis := m.visible()
	if len(vis) != maxRows {
		t.Fatalf("visible rows = %d", len(vis))
	}
	if vis[0].path != "part-29.stp" {
		t.Fatalf("failed file must come first, got %s", vis[0].path)
	}
	if !strings.Contains(m.View(), "10 more") {
		t.Fatalf("view does not fold the rest")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a/very/long/path.stp", 10); got != "a/very/..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestEmptyView(t *testing.T) {
	if v := newModel().View(); v != "" {
		t.Fatalf("empty model rendered %q", v)
	}
}

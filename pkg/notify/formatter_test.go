package notify_test

import (
	"testing"

	"github.com/goliatone/go-enlist/pkg/notify"
)

func TestSavedMessage(t *testing.T) {
	formatter, err := notify.NewFormatter()
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	got, err := formatter.Saved("rack-12")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if got != "rack-12 has been added." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestSavedMessageFallsBackForEmptyName(t *testing.T) {
	formatter, err := notify.NewFormatter()
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	got, err := formatter.Saved("   ")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if got != "Machine has been added." {
		t.Fatalf("unexpected fallback message: %q", got)
	}
}

func TestSavedMessageStripsMarkup(t *testing.T) {
	formatter, err := notify.NewFormatter()
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	got, err := formatter.Saved("<b>rack-12</b>")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if got != "rack-12 has been added." {
		t.Fatalf("markup not stripped: %q", got)
	}
}

func TestFailedMessage(t *testing.T) {
	formatter, err := notify.NewFormatter()
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	got, err := formatter.Failed("Pool not found ")
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	if got != "Could not add machine: Pool not found" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestCustomTemplates(t *testing.T) {
	formatter, err := notify.NewFormatter(
		notify.WithSuccessTemplate("enlisted {{ name }}"),
		notify.WithFallbackLabel("a new machine"),
	)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	got, err := formatter.Saved("")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if got != "enlisted a new machine" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestBadTemplateRejected(t *testing.T) {
	if _, err := notify.NewFormatter(notify.WithSuccessTemplate("{{ name ")); err == nil {
		t.Fatalf("expected parse error for malformed template")
	}
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"versioning-backend/src/broker"
	"versioning-backend/src/builds"
	"versioning-backend/src/contracts"
	"versioning-backend/src/logger"
	"versioning-backend/src/store"
)

// TestPrintEvents tests that lifecycle events published by the service are
// printed one per line
func TestPrintEvents(t *testing.T) {
	recorder := logger.NewRecorder()
	appLogger = recorder

	events := broker.NewInMemoryBroker()
	defer events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := events.Subscribe(ctx, contracts.TopicBuildEvents, "")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	svc := builds.NewService(store.NewMemoryStore(), logger.NewSilentLogger(), builds.Options{Events: events})
	info := contracts.BuildVersionInfo{BaseOS: "ubuntu-20.04", RepoVersion: "1.0.0", UnityVersion: "2021.1.0f1", TargetPlatform: "linux64"}
	if err := svc.Create(ctx, "job-1", contracts.ImageEditor, info, contracts.RepoVersionInfo{}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := builds.BuildID(contracts.ImageEditor, info)
	if _, err := svc.MarkBuildAsFailed(ctx, id, contracts.BuildFailure{Reason: "compile error"}); err != nil {
		t.Fatalf("MarkBuildAsFailed() error = %v", err)
	}
	events.Publish(ctx, contracts.TopicBuildEvents, id, []byte("not json"))

	var out bytes.Buffer
	if err := printEvents(ctx, msgs, &out, 2); err != nil {
		t.Fatalf("printEvents() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "build.started") || !strings.Contains(lines[0], id) {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "build.failed") || !strings.Contains(lines[1], "failures=1") {
		t.Errorf("second line = %q", lines[1])
	}
}

// TestPrintEvents_SkipsUndecodable tests that bad payloads are logged and
// the watch ends when the channel closes
func TestPrintEvents_SkipsUndecodable(t *testing.T) {
	recorder := logger.NewRecorder()
	appLogger = recorder

	msgs := make(chan broker.Message, 1)
	msgs <- broker.Message{Topic: contracts.TopicBuildEvents, Value: []byte("not json"), Offset: 7}
	close(msgs)

	var out bytes.Buffer
	if err := printEvents(context.Background(), msgs, &out, 0); err != nil {
		t.Fatalf("printEvents() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
	if recorder.Count("error") != 1 {
		t.Errorf("expected 1 logged error, got %d", recorder.Count("error"))
	}
}

// TestOpenEvents_RequiresBrokers tests the error when events are disabled
func TestOpenEvents_RequiresBrokers(t *testing.T) {
	t.Setenv("REDPANDA_BROKERS", "")
	if _, err := run(t, "events", "verify"); err == nil || !strings.Contains(err.Error(), "REDPANDA_BROKERS") {
		t.Errorf("expected REDPANDA_BROKERS error, got %v", err)
	}
}

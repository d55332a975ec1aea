package activity

import (
	"context"
	"testing"
)

func TestHooksFanOutAndStamp(t *testing.T) {
	first := &Recorder{}
	second := &Recorder{}
	Hooks{first, nil, second}.Notify(context.Background(), Event{Verb: VerbLogin})

	if len(first.Events) != 1 || len(second.Events) != 1 {
		t.Fatalf("expected both hooks notified")
	}
	if first.Events[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at stamped")
	}
	if got := first.Verbs(); len(got) != 1 || got[0] != VerbLogin {
		t.Fatalf("unexpected verbs %v", got)
	}
}

func TestCloneMetadata(t *testing.T) {
	if CloneMetadata(nil) != nil {
		t.Fatalf("expected nil clone")
	}
	src := map[string]any{"score": 10}
	dst := CloneMetadata(src)
	dst["score"] = 11
	if src["score"] != 10 {
		t.Fatalf("clone mutated source")
	}
}

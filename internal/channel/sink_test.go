package channel

import (
	"encoding/json"
	"testing"

	"github.com/coalfork/wirebridge/internal/testutil/testlog"
)

func TestSinkRegistryRoutesByTarget(t *testing.T) {
	testlog.Start(t)
	r := NewSinkRegistry()

	var gotA, gotB []string
	r.Register("a", SinkFunc(func(_, event string, _ json.RawMessage, _ []byte) {
		gotA = append(gotA, event)
	}))
	r.Register("b", SinkFunc(func(_, event string, _ json.RawMessage, _ []byte) {
		gotB = append(gotB, event)
	}))

	r.Deliver("a", "one", nil, nil)
	r.Deliver("b", "two", nil, nil)
	r.Deliver("missing", "three", nil, nil) // dropped, not an error

	if len(gotA) != 1 || gotA[0] != "one" {
		t.Fatalf("sink a got %v", gotA)
	}
	if len(gotB) != 1 || gotB[0] != "two" {
		t.Fatalf("sink b got %v", gotB)
	}
}

func TestSinkRegistryUnregister(t *testing.T) {
	testlog.Start(t)
	r := NewSinkRegistry()

	calls := 0
	r.Register("a", SinkFunc(func(string, string, json.RawMessage, []byte) { calls++ }))
	r.Deliver("a", "evt", nil, nil)
	r.Unregister("a")
	r.Deliver("a", "evt", nil, nil)

	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

package hprof

import (
	"context"
	"testing"
)

func TestEnterContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != nil {
		t.Fatal("expected no profiler")
	}
	if err := Enter(ctx, "nothing").Leave(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, clock := newTestProfiler()
	ctx = NewContext(ctx, p)
	if FromContext(ctx) != p {
		t.Fatal("expected the profiler carried by the context")
	}

	step := func(ctx context.Context) {
		defer Enter(ctx, "step").Leave()
		clock.Advance(2)
	}
	step(ctx)
	step(ctx)
	mustNotFail(t, p.EndFrame())

	root, _, _ := p.LastFrame()
	n, ok := root.Child("step")
	if !ok || n.DurationNS() != 4 || n.Calls() != 2 {
		t.Fatalf("unexpected step region %+v", n)
	}
}

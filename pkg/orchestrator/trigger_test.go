package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/tagfolder/pkg/metrics"
	"github.com/mattsolo1/tagfolder/pkg/models"
)

func TestTriggerDebounces(t *testing.T) {
	src := newFakeSource(doc("a.md", "x"))
	pub := make(chanPublisher, 4)
	m := metrics.NewMetrics()
	o := New(src, pub, testSettings(), WithMetrics(m))

	require.NoError(t, o.Refresh(context.Background()))
	pub.next(t)

	src.set("a.md", "y")
	src.set("b.md", "z")
	o.Trigger("a.md")
	o.Trigger("a.md")
	o.Trigger("b.md")

	root := pub.next(t)
	assert.NotNil(t, root.Child("y"))
	assert.NotNil(t, root.Child("z"))

	// wait out another delay to be sure nothing else runs
	time.Sleep(80 * time.Millisecond)
	pub.none(t)

	full, singles := src.loads()
	assert.Equal(t, 1, full)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, singles)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TriggersTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CoalescedTotal))
}

func TestTriggerWithoutPathsReloadsEverything(t *testing.T) {
	src := newFakeSource(doc("a.md", "x"))
	pub := make(chanPublisher, 4)
	o := New(src, pub, testSettings())

	require.NoError(t, o.Refresh(context.Background()))
	pub.next(t)

	src.set("c.md", "w")
	o.Trigger()
	assert.NotNil(t, pub.next(t).Child("w"))

	full, _ := src.loads()
	assert.Equal(t, 2, full)
}

func TestTriggerWhileRunningRerunsOnce(t *testing.T) {
	src := newFakeSource(doc("a.md", "x"))
	pub := make(chanPublisher) // unbuffered: a publish blocks until read
	o := New(src, pub, testSettings())

	go func() { _ = o.Refresh(context.Background()) }()
	pub.next(t)

	src.set("a.md", "y")
	o.Trigger("a.md")
	// the scheduled refresh is now blocked in SetRoot
	time.Sleep(80 * time.Millisecond)

	src.set("a.md", "z")
	o.Trigger("a.md")
	o.Trigger("a.md")
	time.Sleep(80 * time.Millisecond)

	assert.NotNil(t, pub.next(t).Child("y"))
	assert.NotNil(t, pub.next(t).Child("z"))

	time.Sleep(80 * time.Millisecond)
	pub.none(t)
}

func TestRunConsumesChanges(t *testing.T) {
	src := newFakeSource(doc("a.md", "x"))
	pub := make(chanPublisher, 4)
	o := New(src, pub, testSettings())

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan models.Change)
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx, changes) }()

	assert.NotNil(t, pub.next(t).Child("x"))

	src.del("a.md")
	changes <- models.Change{Type: models.ChangeDeleted, Path: "a.md"}
	root := pub.next(t)
	assert.Empty(t, root.Children)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunStopsWhenChangesClose(t *testing.T) {
	src := newFakeSource()
	pub := make(chanPublisher, 4)
	o := New(src, pub, testSettings())

	changes := make(chan models.Change)
	close(changes)
	assert.NoError(t, o.Run(context.Background(), changes))
}

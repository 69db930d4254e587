package telemetry

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/carousel/internal/swiper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: window ends at 10 with 5 items", swiper.ErrInvalidWindow)
	r := NewReport(err,
		"arg_index", 3,
		"state.start", 6,
		"state.end", 10,
		"state.children", []string{"a", "b"},
	)

	assert.Equal(t, KindInvalidWindow, r.Kind)
	assert.Equal(t, err.Error(), r.Error)
	assert.NotEmpty(t, r.ID)
	assert.EqualValues(t, 3, r.Get("arg_index").Int())
	assert.EqualValues(t, 10, r.Get("state.end").Int())
	assert.Equal(t, "b", r.Get("state.children.1").String())

	state, ok := r.Context["state"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 6, state["start"])
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindIndexResolution, kindOf(fmt.Errorf("%w: evaluating x", swiper.ErrIndexResolution)))
	assert.Equal(t, KindUnsupportedMutation, kindOf(swiper.ErrUnsupportedMutation))
	assert.Equal(t, KindOther, kindOf(fmt.Errorf("boom")))
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sink := NewSink(store)
	sink.Report(swiper.ErrInvalidWindow, "state.end", 10)
	sink.Report(swiper.ErrIndexResolution, "arg_index", 4)
	sink.Close()

	reports, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, KindIndexResolution, reports[0].Kind, "newest first")
	assert.EqualValues(t, 4, reports[0].Get("arg_index").Int())
	assert.Equal(t, KindInvalidWindow, reports[1].Kind)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreReopen(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	dir := t.TempDir()
	store, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, NewReport(swiper.ErrUnsupportedMutation, "id", "x")))
	require.NoError(t, store.Close())

	store, err = Open(ctx, dir)
	require.NoError(t, err)
	defer store.Close()
	reports, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "x", reports[0].Get("id").String())
}

func TestSinkWithoutStore(t *testing.T) {
	t.Parallel()

	sink := NewSink(nil)
	var r swiper.Reporter = sink
	r.Report(swiper.ErrInvalidWindow)
	sink.Close()
}

func TestSinkClose(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sink := NewSink(store)
	for i := range queueSize {
		sink.Report(swiper.ErrIndexResolution, "arg_index", i)
	}
	sink.Close()
	sink.Close()
	sink.Report(swiper.ErrInvalidWindow, "after", "close")

	reports, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, reports, queueSize, "queued reports are flushed on close")
	for _, r := range reports {
		assert.Equal(t, KindIndexResolution, r.Kind)
	}
}

func TestOpenWithoutDataDir(t *testing.T) {
	t.Parallel()

	_, err := Open(t.Context(), "")
	require.Error(t, err)
}

package pagination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageScript struct {
	sizes  []int
	errAt  int
	calls  []int
	sleeps []time.Duration
}

func (s *pageScript) fetch(_ context.Context, page, pageSize int) ([]int, error) {
	s.calls = append(s.calls, page)
	if s.errAt == page {
		return nil, errors.New("boom")
	}
	if page > len(s.sizes) {
		return nil, nil
	}
	items := make([]int, s.sizes[page-1])
	for i := range items {
		items[i] = (page-1)*pageSize + i
	}
	return items, nil
}

func (s *pageScript) sleep(_ context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return nil
}

func TestFetchAllStopsOnShortPage(t *testing.T) {
	s := &pageScript{sizes: []int{100, 100, 37}}
	got := FetchAll(context.Background(), s.fetch, Options{Delay: 500 * time.Millisecond, Sleep: s.sleep})

	require.Len(t, got, 237)
	assert.Equal(t, []int{1, 2, 3}, s.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, s.sleeps)
	assert.Equal(t, 236, got[236])
}

func TestFetchAllTruncatesAtCap(t *testing.T) {
	s := &pageScript{sizes: []int{100, 100, 100}}
	got := FetchAll(context.Background(), s.fetch, Options{MaxItems: 50, Sleep: s.sleep})

	assert.Len(t, got, 50)
	assert.Equal(t, []int{1}, s.calls)
	assert.Empty(t, s.sleeps)
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	s := &pageScript{sizes: []int{100, 0}}
	got := FetchAll(context.Background(), s.fetch, Options{Sleep: s.sleep})

	assert.Len(t, got, 100)
	assert.Equal(t, []int{1, 2}, s.calls)
}

func TestFetchAllFirstPageErrorReturnsEmpty(t *testing.T) {
	s := &pageScript{sizes: []int{100}, errAt: 1}
	got := FetchAll(context.Background(), s.fetch, Options{Sleep: s.sleep})

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []int{1}, s.calls, "no retry after a failed page")
}

func TestFetchAllErrorKeepsPartialResult(t *testing.T) {
	s := &pageScript{sizes: []int{100, 100, 100}, errAt: 2}
	got := FetchAll(context.Background(), s.fetch, Options{Sleep: s.sleep})

	assert.Len(t, got, 100)
	assert.Equal(t, []int{1, 2}, s.calls)
}

func TestFetchAllStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &pageScript{sizes: []int{100, 100}}
	got := FetchAll(ctx, s.fetch, Options{Delay: time.Second})

	assert.Len(t, got, 100)
	assert.Equal(t, []int{1}, s.calls)
}

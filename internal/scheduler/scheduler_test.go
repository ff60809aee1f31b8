package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/pipeline"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	kinds []pipeline.JobKind
	err   error
	got   chan struct{}
}

func (f *fakeSubmitter) Submit(kind pipeline.JobKind, links []string) (string, error) {
	f.mu.Lock()
	f.kinds = append(f.kinds, kind)
	f.mu.Unlock()
	if f.got != nil {
		f.got <- struct{}{}
	}
	if f.err != nil {
		return "", f.err
	}
	return "run-id", nil
}

func (f *fakeSubmitter) submitted() []pipeline.JobKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.JobKind(nil), f.kinds...)
}

var seoul = time.FixedZone("KST", 9*60*60)

func TestDefaultScheduleFiresThreeTimesADay(t *testing.T) {
	s, err := New(&fakeSubmitter{}, logger.NewNop(), Config{Location: seoul, EnrichSpec: "30 3 * * *"})
	require.NoError(t, err)

	from := time.Date(2025, 7, 1, 5, 0, 0, 0, seoul)
	next := s.NextAfter(from)

	require.Len(t, next[pipeline.KindCollectCrawl], 3)
	for i, hour := range []int{6, 12, 18} {
		got := next[pipeline.KindCollectCrawl][i].In(seoul)
		assert.Equal(t, time.Date(2025, 7, 1, hour, 0, 0, 0, seoul), got)
	}
	require.Len(t, next[pipeline.KindEnrich], 1)
	assert.Equal(t, time.Date(2025, 7, 2, 3, 30, 0, 0, seoul), next[pipeline.KindEnrich][0].In(seoul))
}

func TestScheduleUsesConfiguredZone(t *testing.T) {
	s, err := New(&fakeSubmitter{}, logger.NewNop(), Config{Location: seoul, CrawlSpecs: []string{"0 6 * * *"}})
	require.NoError(t, err)

	// 22:00 UTC on June 30 is 07:00 on July 1 in Seoul, so the next 06:00 is July 2.
	next := s.NextAfter(time.Date(2025, 6, 30, 22, 0, 0, 0, time.UTC))
	require.Len(t, next[pipeline.KindCollectCrawl], 1)
	assert.Equal(t, time.Date(2025, 7, 2, 6, 0, 0, 0, seoul), next[pipeline.KindCollectCrawl][0].In(seoul))
	assert.Empty(t, next[pipeline.KindEnrich])
}

func TestInvalidSpecRejected(t *testing.T) {
	_, err := New(&fakeSubmitter{}, logger.NewNop(), Config{CrawlSpecs: []string{"every morning"}})
	assert.Error(t, err)

	_, err = New(&fakeSubmitter{}, logger.NewNop(), Config{CrawlSpecs: []string{}, EnrichSpec: "* * *"})
	assert.Error(t, err)
}

func TestStartupRunIsSubmitted(t *testing.T) {
	sub := &fakeSubmitter{got: make(chan struct{}, 1)}
	s, err := New(sub, logger.NewNop(), Config{CrawlSpecs: []string{}, StartupDelay: 10 * time.Millisecond})
	require.NoError(t, err)

	s.Start()
	select {
	case <-sub.got:
	case <-time.After(5 * time.Second):
		t.Fatal("startup crawl was not submitted")
	}
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, []pipeline.JobKind{pipeline.KindCollectCrawl}, sub.submitted())
}

func TestStopCancelsPendingStartupRun(t *testing.T) {
	sub := &fakeSubmitter{}
	s, err := New(sub, logger.NewNop(), Config{CrawlSpecs: []string{}, StartupDelay: time.Hour})
	require.NoError(t, err)

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, sub.submitted())
}

func TestTriggerToleratesFullQueue(t *testing.T) {
	sub := &fakeSubmitter{err: pipeline.ErrQueueFull}
	s, err := New(sub, logger.NewNop(), Config{CrawlSpecs: []string{}})
	require.NoError(t, err)

	s.trigger(pipeline.KindEnrich, "cron")
	s.trigger(pipeline.KindCollectCrawl, "cron")
	assert.Equal(t, []pipeline.JobKind{pipeline.KindEnrich, pipeline.KindCollectCrawl}, sub.submitted())
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/personascope/vocabulary/persona"
)

func TestPipeline_Watch_RerunsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("user_id,month,text\nu1,2025-09,storing\n"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		results []*Result
	)
	done := make(chan error, 1)
	go func() {
		done <- newPipeline(t, nil).Watch(ctx, path, func(r *Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(results)
	}

	require.Eventually(t, func() bool { return count() >= 1 }, 5*time.Second, 20*time.Millisecond,
		"expected the initial pass")

	// Give the watcher a moment to settle, then rewrite the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path,
		[]byte("user_id,month,text\nu1,2025-09,storing\nu2,2025-09,klaar mee\n"), 0644))

	require.Eventually(t, func() bool { return count() >= 2 }, 5*time.Second, 20*time.Millisecond,
		"expected a pass after the write")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	latest := results[len(results)-1]
	require.Len(t, latest.Records, 2)
	assert.Equal(t, persona.Emotional, latest.Records[1].Dominant)
}

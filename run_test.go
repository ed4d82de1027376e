package webcrawl_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid run", func(t *testing.T) {
		t.Parallel()

		r := &webcrawl.Run{SeedURL: "https://example.com/", MaxDepth: 1}
		assert.NoError(t, r.Validate())
	})

	t.Run("requires seed URL", func(t *testing.T) {
		t.Parallel()

		err := (&webcrawl.Run{MaxDepth: 1}).Validate()

		require.Error(t, err)
		assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
	})

	t.Run("requires positive depth", func(t *testing.T) {
		t.Parallel()

		err := (&webcrawl.Run{SeedURL: "https://example.com/"}).Validate()

		require.Error(t, err)
		assert.Equal(t, webcrawl.EINVALID, webcrawl.ErrorCode(err))
	})
}

func TestNewRun(t *testing.T) {
	t.Parallel()

	t.Run("copies result", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		result := &webcrawl.Result{
			Downloaded: []string{"https://example.com/", "https://example.com/a"},
			Errors:     map[string]error{"https://example.com/b": errors.New("HTTP 404")},
		}

		run := webcrawl.NewRun("https://example.com/", 2, result, start, start.Add(time.Second))

		assert.Equal(t, "https://example.com/", run.SeedURL)
		assert.Equal(t, 2, run.MaxDepth)
		assert.Equal(t, result.Downloaded, run.Downloaded)
		assert.Equal(t, map[string]string{"https://example.com/b": "HTTP 404"}, run.Errors)
		assert.Equal(t, start, run.StartedAt)
		assert.Equal(t, start.Add(time.Second), run.FinishedAt)

		// The run must not alias the result.
		result.Downloaded[0] = "changed"
		assert.Equal(t, "https://example.com/", run.Downloaded[0])
	})

	t.Run("handles nil result", func(t *testing.T) {
		t.Parallel()

		run := webcrawl.NewRun("https://example.com/", 1, nil, time.Time{}, time.Time{})

		assert.Empty(t, run.Downloaded)
		assert.NotNil(t, run.Errors)
	})
}

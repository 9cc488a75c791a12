package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/repsel"
)

func TestObserveSelection(t *testing.T) {
	m := New()
	m.ObserveSelection(&repsel.Selection{BestK: 4, BestMeanScore: 0.75, Trials: 30, Degenerate: 2})

	assert.Equal(t, 28.0, testutil.ToFloat64(m.Trials.WithLabelValues("scored")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Trials.WithLabelValues("degenerate")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.BestK))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.BestScore))
}

func TestCountFilesAndStages(t *testing.T) {
	m := New()
	m.CountFiles("filter", "pass", 3)
	m.CountFiles("filter", "reject", 1)
	m.CountFiles("filter", "pass", 2)
	m.ObserveStage("filter", 250*time.Millisecond)
	m.Selected.Add(5)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Files.WithLabelValues("filter", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Files.WithLabelValues("filter", "reject")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Selected))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.BestK.Set(3)
	path := filepath.Join(t.TempDir(), "repsel.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "repsel_best_k 3")
}

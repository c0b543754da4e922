package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rootseek/internal/config"
	"github.com/aretw0/rootseek/internal/logging"
	"github.com/aretw0/rootseek/pkg/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Plot.Dir = filepath.Join(t.TempDir(), "plots")
	cfg.Store.Kind = "file"
	cfg.Store.Dir = filepath.Join(t.TempDir(), "sessions")
	return cfg
}

func TestRunSession_DefaultFlow(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	err := RunSession(context.Background(), RunOptions{
		Config:    cfg,
		Logger:    logging.NewNop(),
		SessionID: "cli-flow",
		In:        strings.NewReader("1.0\n0\n1.0\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, ">>> Session 'cli-flow' active.")
	assert.Contains(t, text, "The equations intersect at the point: (")
	assert.Contains(t, text, ">>> Finished at 'Done'.")

	entries, err := os.ReadDir(cfg.Plot.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRunSession_ResumeAndFresh(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plot.Enabled = false

	var first bytes.Buffer
	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "s1",
		In: strings.NewReader("1.0\n"), Out: &first,
	}))

	var second bytes.Buffer
	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "s1",
		In: strings.NewReader(""), Out: &second,
	}))
	assert.Contains(t, second.String(), ">>> Resuming at 'AwaitGuessesEq2'...")

	var third bytes.Buffer
	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "s1", Fresh: true,
		In: strings.NewReader(""), Out: &third,
	}))
	assert.Contains(t, third.String(), ">>> Session 's1' active.")
}

func TestRunSession_OverflowingIntersection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plot.Enabled = false
	var out bytes.Buffer

	// f2 overflows far from the origin, so the residual at 1e300 is not finite.
	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "huge",
		In: strings.NewReader("1.0\n0\n1e300\n"), Out: &out,
	}))
	assert.Contains(t, out.String(), "The equations intersect at the point: (1e+300, 1e+300)")
	assert.Contains(t, out.String(), ">>> Finished at 'Done'.")

	sessions, closeStore, err := OpenSessions(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	state, err := sessions.Load(context.Background(), "huge")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDone, state.Phase)
	require.NotNil(t, state.Intersection)
	assert.Equal(t, 1e300, state.Intersection.X)
	assert.False(t, state.Intersection.Converged)
	assert.False(t, state.Intersection.Finite())
}

func TestRunSession_FinishedSessionStartsOver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plot.Enabled = false

	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "again",
		In: strings.NewReader("1.0\n0\n1.0\n"), Out: &bytes.Buffer{},
	}))

	var second bytes.Buffer
	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), SessionID: "again",
		In: strings.NewReader("1.0\n"), Out: &second,
	}))
	assert.Contains(t, second.String(), ">>> Session 'again' active.")
	assert.NotContains(t, second.String(), "The equations intersect at the point")
}

func TestRunSession_HeadlessIsQuiet(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plot.Enabled = false
	var out bytes.Buffer

	require.NoError(t, RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(), Headless: true,
		In: strings.NewReader("1.0\n0\n1.0\n"), Out: &out,
	}))
	assert.NotContains(t, out.String(), ">>>")
}

func TestRunSession_MalformedGuessFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plot.Enabled = false

	err := RunSession(context.Background(), RunOptions{
		Config: cfg, Logger: logging.NewNop(),
		In: strings.NewReader("1.0, abc\n"), Out: &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}

func TestRunSession_UnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Kind = "etcd"
	err := RunSession(context.Background(), RunOptions{Config: cfg, Logger: logging.NewNop(), Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "unknown store kind")
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/trustroute/internal/config"
	"github.com/aretw0/trustroute/internal/logging"
	"github.com/aretw0/trustroute/pkg/adapters/redis"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Memory(t *testing.T) {
	rt, err := Build(context.Background(), config.Default(), logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Registry)
	assert.NotNil(t, rt.Metrics)
	assert.Equal(t, domain.DefaultHyperparameters(), rt.Engine.Hyperparameters())
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Metrics.Enabled = false

	rt, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Registry)
	_, ok := rt.Engine.Store().(*redis.Store)
	assert.True(t, ok)

	_, err = rt.Engine.Decide(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	assert.True(t, mr.Exists("trustroute:pairs"))
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "etcd"
	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrUnknownBackend)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	cfg = config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.Addr = addr
	_, err = Build(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to reach redis")
}

const trace = `
datapath_id: 1
steps:
  - frame: {src: "AA-AA-AA-AA-AA-01", dst: "bb:bb:bb:bb:bb:02", in_port: 1, candidates: [2, 3]}
  - outcome: {src: "aa:aa:aa:aa:aa:01", dst: "bb:bb:bb:bb:bb:02", action: 3, reward: 5, node: "aa:aa:aa:aa:aa:01", success_rate: 1}
    repeat: 2
  - frame: {src: "aa:aa:aa:aa:aa:01", dst: "bb:bb:bb:bb:bb:02", in_port: 1, buffered: true}
`

func writeTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSimulate(t *testing.T) {
	tr, err := LoadTrace(writeTrace(t, trace))
	require.NoError(t, err)
	require.Len(t, tr.Steps, 3)

	rt, err := Build(context.Background(), config.Default(), logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := Simulate(context.Background(), rt, tr, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Outcomes)
	require.Len(t, report.Decisions, 2)
	first, second := report.Decisions[0], report.Decisions[1]
	assert.Equal(t, domain.Flood, first.Action)
	assert.Equal(t, domain.NodeID("aa:aa:aa:aa:aa:01"), first.Src, "Hardware addresses are canonicalised")
	assert.Equal(t, domain.Action(3), second.Action, "Two rewards of 5 put port 3 at 3.75")
	assert.False(t, second.InCandidates)

	assert.Contains(t, out.String(), "FLOOD")
	assert.Contains(t, out.String(), "port 3")
	assert.Contains(t, out.String(), "seeded")
}

func TestLoadTrace_Errors(t *testing.T) {
	_, err := LoadTrace(writeTrace(t, "steps:\n  - repeat: 2\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = LoadTrace(writeTrace(t, "steps:\n  - frame: {src: a, dst: b}\n    outcome: {src: a}\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = LoadTrace(writeTrace(t, "steps:\n  - outcome: {action: FLOODS}\n"))
	assert.Error(t, err)

	_, err = LoadTrace(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read trace")
}

func TestSimulate_BadMAC(t *testing.T) {
	tr, err := LoadTrace(writeTrace(t, "steps:\n  - frame: {src: nope, dst: \"bb:bb:bb:bb:bb:02\"}\n"))
	require.NoError(t, err)
	rt, err := Build(context.Background(), config.Default(), logging.NewNop())
	require.NoError(t, err)

	_, err = Simulate(context.Background(), rt, tr, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.ErrorContains(t, err, "step 1")
}

func TestWriteSnapshot(t *testing.T) {
	snap := domain.Snapshot{
		QTable: []domain.PairEntry{{
			Src: "a", Dst: "b",
			Actions: domain.ActionValues{{Action: domain.Flood, Value: 0.1}, {Action: 2, Value: 0.5}},
		}},
		Trust: []domain.TrustEntry{{Node: "a", Trust: 0.4}},
	}

	var md bytes.Buffer
	require.NoError(t, WriteSnapshot(&md, snap, 0.5, FormatMarkdown))
	assert.Contains(t, md.String(), "| `a` | `b` | FLOOD=0.1000, **2=0.5000** |")
	assert.Contains(t, md.String(), "| `a` | 0.4000 | **gated** |")

	var y bytes.Buffer
	require.NoError(t, WriteSnapshot(&y, snap, 0.5, FormatYAML))
	assert.Contains(t, y.String(), "action: FLOOD")

	var m bytes.Buffer
	require.NoError(t, WriteSnapshot(&m, snap, 0.5, FormatMermaid))
	assert.Contains(t, m.String(), "graph LR")

	assert.ErrorIs(t, WriteSnapshot(&bytes.Buffer{}, snap, 0.5, "html"), domain.ErrInvalidArgument)
	assert.Contains(t, SnapshotMarkdown(domain.Snapshot{}, 0.5), "_empty_")
}

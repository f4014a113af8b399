package recognize

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroldesk/pumplog/internal/common"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
	sleep  time.Duration

	gotName string
	gotArgs []string
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.gotName = name
	r.gotArgs = args
	if r.sleep > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(r.sleep):
		}
	}
	return r.stdout, r.stderr, r.err
}

func newTestEngine(t *testing.T, r Runner) (*Engine, string) {
	t.Helper()
	img := filepath.Join(t.TempDir(), "receipt.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg-bytes"), 0o600))

	e := NewEngine(common.RecognizerConfig{
		Command:    "python",
		ScriptPath: "receipt_processor.py",
		Timeout:    2 * time.Second,
	}, nil)
	e.runner = r
	return e, img
}

func TestExtractGenuineOutput(t *testing.T) {
	out := `{
		"pumpSerialNumber": "112233",
		"printDate": "03-MAY-2025",
		"model": "2422",
		"nozzles": [
			{"nozzle": "1", "a": "100.500", "v": "200.250", "totSales": "300"},
			{"nozzle": 2, "a": 55.5, "v": 10, "totSales": 7}
		]
	}`
	r := &stubRunner{stdout: []byte(out)}
	e, img := newTestEngine(t, r)

	raw, err := e.Extract(context.Background(), img)
	require.NoError(t, err)

	assert.False(t, raw.Degraded)
	assert.Equal(t, "112233", raw.PumpSerialNumber)
	assert.Equal(t, "03-MAY-2025", raw.PrintDate)
	require.Len(t, raw.Nozzles, 2)
	assert.Equal(t, RawNozzle{Nozzle: "1", Amount: "100.500", Volume: "200.250", TotSales: "300"}, raw.Nozzles[0])
	// bare number literals are carried over verbatim as strings
	assert.Equal(t, RawNozzle{Nozzle: "2", Amount: "55.5", Volume: "10", TotSales: "7"}, raw.Nozzles[1])

	assert.Equal(t, "python", r.gotName)
	assert.Equal(t, []string{"receipt_processor.py", img}, r.gotArgs)
}

func TestExtractMissingFile(t *testing.T) {
	e, _ := newTestEngine(t, &stubRunner{})

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExtractFailuresResolveToFallback(t *testing.T) {
	cases := map[string]*stubRunner{
		"non-zero exit":  {err: errors.New("exit status 1"), stderr: []byte("traceback")},
		"empty output":   {stdout: []byte("  \n")},
		"malformed json": {stdout: []byte(`{"nozzles": [`)},
		"wrong shape":    {stdout: []byte(`{"pumpSerialNumber": "1"}`)},
		"bad item shape": {stdout: []byte(`{"nozzles": [{"a": "1.0"}]}`)},
	}

	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			e, img := newTestEngine(t, r)

			raw, err := e.Extract(context.Background(), img)
			require.NoError(t, err)

			assert.True(t, raw.Degraded)
			assert.Equal(t, FallbackReceipt(), raw)
		})
	}
}

func TestExtractTimeoutResolvesToFallback(t *testing.T) {
	r := &stubRunner{sleep: time.Second, stdout: []byte(`{"nozzles": []}`)}
	e, img := newTestEngine(t, r)
	e.cfg.Timeout = 20 * time.Millisecond

	raw, err := e.Extract(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, FallbackReceipt(), raw)
}

func TestFallbackContent(t *testing.T) {
	raw := FallbackReceipt()

	assert.True(t, raw.Degraded)
	assert.Equal(t, "583227", raw.PumpSerialNumber)
	assert.Equal(t, "21-APR-2025", raw.PrintDate)
	require.Len(t, raw.Nozzles, 4)
	assert.Equal(t, RawNozzle{Nozzle: "1", Amount: "7709841.690", Volume: "398656.800", TotSales: "71064"}, raw.Nozzles[0])
}

func TestExecRunnerLogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newExecRunner(logger)

	// a command that cannot exist fails before any process starts
	_, _, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "no-such-recognizer"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "recognizer.exec.failed")
}

func TestOutputSchemaContract(t *testing.T) {
	schema := compileOutputSchema()

	ok := []byte(`{"pumpSerialNumber": 583227, "nozzles": [{"nozzle": "1", "a": "1.0"}]}`)
	assert.NoError(t, validateOutput(schema, ok))

	cases := map[string][]byte{
		"missing nozzles":   []byte(`{"pumpSerialNumber": "1"}`),
		"missing nozzle id": []byte(`{"nozzles": [{"a": "1.0"}]}`),
		"nozzles not array": []byte(`{"nozzles": {}}`),
		"not json":          []byte(`{`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validateOutput(schema, data))
		})
	}
}

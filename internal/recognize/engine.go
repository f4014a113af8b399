package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/petroldesk/pumplog/internal/common"
)

// Engine invokes the external recognition engine as an isolated subprocess:
// one positional argument (the image path), stdout as the sole data channel,
// stderr diagnostic-only. Every recognition failure resolves to the fixed
// fallback record; the run never yields a partial mix of genuine and
// placeholder data.
type Engine struct {
	cfg    common.RecognizerConfig
	runner Runner
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewEngine(cfg common.RecognizerConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		runner: newExecRunner(logger),
		schema: compileOutputSchema(),
		logger: logger,
	}
}

// Extract runs recognition against one image. A missing input file is a
// caller error and surfaces as ErrNotFound; everything else is absorbed.
func (e *Engine) Extract(ctx context.Context, path string) (RawReceipt, error) {
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		return RawReceipt{}, fmt.Errorf("receipt image %q: %w", path, common.ErrNotFound)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	stdout, _, err := e.runner.Run(runCtx, e.cfg.Command, e.cfg.ScriptPath, path)
	if err != nil {
		reason := "exit"
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		return e.fallback(path, reason, err), nil
	}

	out := bytes.TrimSpace(stdout)
	if len(out) == 0 {
		return e.fallback(path, "empty-output", nil), nil
	}

	if err := validateOutput(e.schema, out); err != nil {
		return e.fallback(path, "schema", err), nil
	}

	var payload rawPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return e.fallback(path, "decode", err), nil
	}

	e.logger.Debug("recognition ok", "path", path, "nozzles", len(payload.Nozzles))
	return payload.toRawReceipt(), nil
}

func (e *Engine) fallback(path, reason string, err error) RawReceipt {
	e.logger.Warn("recognition failed, substituting fallback record",
		"path", path,
		"reason", reason,
		"error", err,
	)
	return FallbackReceipt()
}

// rawPayload decodes the recognizer's stdout. looseString tolerates bare
// number literals where some recognizer builds drop the quotes.
type rawPayload struct {
	PumpSerialNumber looseString `json:"pumpSerialNumber"`
	PrintDate        looseString `json:"printDate"`
	Model            looseString `json:"model"`
	Nozzles          []struct {
		Nozzle   looseString `json:"nozzle"`
		Amount   looseString `json:"a"`
		Volume   looseString `json:"v"`
		TotSales looseString `json:"totSales"`
	} `json:"nozzles"`
}

func (p rawPayload) toRawReceipt() RawReceipt {
	raw := RawReceipt{
		PumpSerialNumber: string(p.PumpSerialNumber),
		PrintDate:        string(p.PrintDate),
		Model:            string(p.Model),
		Nozzles:          make([]RawNozzle, 0, len(p.Nozzles)),
	}
	for _, n := range p.Nozzles {
		raw.Nozzles = append(raw.Nozzles, RawNozzle{
			Nozzle:   string(n.Nozzle),
			Amount:   string(n.Amount),
			Volume:   string(n.Volume),
			TotSales: string(n.TotSales),
		})
	}
	return raw
}

type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	*s = looseString(string(b))
	return nil
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/query"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// fieldJSON is the wire form of one save field.
type fieldJSON struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Raw     string `json:"raw"`
	Display string `json:"display,omitempty"`
	Unknown bool   `json:"unknown,omitempty"`
}

// writeJSON is the wire form of one safe-write operation.
type writeJSON struct {
	Path       string `json:"path"`
	Outcome    string `json:"outcome"`
	BackupKept string `json:"backup_kept,omitempty"`
}

func (h *Handlers) log() *logging.Logger {
	return logging.OrNop(h.Log).WithComponent("mcp")
}

func (h *Handlers) open(ctx context.Context) (*session.Session, *mcp.CallToolResult) {
	if h.Load == nil {
		return nil, errorResult("no game files configured")
	}
	s, err := h.Load(ctx)
	if err != nil {
		return nil, errorResult(fmt.Sprintf("load: %s", err))
	}
	return s, nil
}

// HandleShow implements the ftm/show MCP tool.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, res := h.open(ctx)
	if res != nil {
		return res, nil
	}
	args := req.GetArguments()
	list, _ := args["fields"].(string)

	var values []session.FieldValue
	if strings.TrimSpace(list) == "" {
		values = s.Fields()
	} else {
		for _, name := range strings.Split(list, ",") {
			fv, err := s.Field(strings.TrimSpace(name))
			if err != nil {
				return errorResult(err.Error()), nil
			}
			values = append(values, fv)
		}
	}

	fields := make(map[string]fieldJSON, len(values))
	for _, fv := range values {
		fj := fieldJSON{Line: fv.Field.Line(), Kind: fv.Field.Kind.String(), Raw: fv.Raw, Unknown: fv.Unknown}
		if fv.Display != fv.Raw {
			fj.Display = fv.Display
		}
		fields[fv.Field.Name] = fj
	}
	warnings := make([]string, 0, len(s.Warnings))
	for _, w := range s.Warnings {
		warnings = append(warnings, w.Error())
	}
	return jsonResult(map[string]any{
		"lines":    s.Save.Len(),
		"fields":   fields,
		"warnings": warnings,
	})
}

// HandleSet implements the ftm/set MCP tool.
func (h *Handlers) HandleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	field, _ := args["field"].(string)
	value := stringArg(args["value"])
	if field == "" || value == "" {
		return errorResult("field and value arguments are required"), nil
	}
	dryRun, _ := args["dry_run"].(bool)

	s, res := h.open(ctx)
	if res != nil {
		return res, nil
	}
	if err := s.SetField(field, value); err != nil {
		var u *savefile.UnknownEnumValue
		if errors.As(err, &u) {
			if opts, ok := s.Options(field); ok {
				return errorResult(fmt.Sprintf("%s; %d known options, see ftm/show", err, len(opts))), nil
			}
		}
		return errorResult(err.Error()), nil
	}
	fv, _ := s.Field(field)
	response := map[string]any{"field": field, "raw": fv.Raw, "display": fv.Display, "dry_run": dryRun}
	if dryRun {
		return jsonResult(response)
	}

	op, err := s.SaveRecord(ctx)
	response["write"] = toWriteJSON(op)
	h.log().Infow("field set", "field", field, "value", value, "outcome", op.Outcome)
	if err != nil {
		return writeError(response, err)
	}
	return jsonResult(response)
}

// HandlePersistent implements the ftm/persistent MCP tool.
func (h *Handlers) HandlePersistent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	key, _ := args["key"].(string)
	value := stringArg(args["value"])
	dryRun, _ := args["dry_run"].(bool)

	s, res := h.open(ctx)
	if res != nil {
		return res, nil
	}
	form := s.Persistent()
	if key == "" {
		return jsonResult(form)
	}
	if value == "" {
		return errorResult("value argument is required with key"), nil
	}
	if err := form.Set(key, value); err != nil {
		return errorResult(err.Error()), nil
	}
	if err := s.ApplyPersistent(form); err != nil {
		return errorResult(err.Error()), nil
	}
	response := map[string]any{"persistent": s.Persistent(), "dry_run": dryRun}
	if dryRun {
		return jsonResult(response)
	}

	// fun is mirrored into the save file as well.
	var ops []*safewrite.Operation
	var err error
	if form.FunSet && form.Fun != 0 {
		ops, err = s.SaveAll(ctx)
	} else {
		var op *safewrite.Operation
		op, err = s.SaveIni(ctx)
		ops = append(ops, op)
	}
	writes := make([]writeJSON, 0, len(ops))
	for _, op := range ops {
		writes = append(writes, toWriteJSON(op))
	}
	response["writes"] = writes
	if err != nil {
		return writeError(response, err)
	}
	return jsonResult(response)
}

// HandleEval implements the ftm/eval MCP tool.
func (h *Handlers) HandleEval(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	src, _ := args["expr"].(string)
	if strings.TrimSpace(src) == "" {
		return errorResult("expr argument is required"), nil
	}
	s, res := h.open(ctx)
	if res != nil {
		return res, nil
	}
	out, err := query.Eval(s, src)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprint(out)), nil
}

// HandlePresets implements the ftm/presets MCP tool.
func (h *Handlers) HandlePresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.Presets == nil {
		return errorResult("no preset store configured"), nil
	}
	args := req.GetArguments()
	action, _ := args["action"].(string)
	name, _ := args["name"].(string)
	if action != "list" && name == "" {
		return errorResult("name argument is required for " + action), nil
	}

	switch action {
	case "list":
		names, err := h.Presets.List()
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(names)
	case "load":
		p, err := h.Presets.Get(name)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		s, res := h.open(ctx)
		if res != nil {
			return res, nil
		}
		if err := s.ApplyPreset(p); err != nil {
			return errorResult(err.Error()), nil
		}
		ops, err := s.SaveAll(ctx)
		writes := make([]writeJSON, 0, len(ops))
		for _, op := range ops {
			writes = append(writes, toWriteJSON(op))
		}
		response := map[string]any{"preset": name, "writes": writes}
		if err != nil {
			return writeError(response, err)
		}
		return jsonResult(response)
	case "save":
		s, res := h.open(ctx)
		if res != nil {
			return res, nil
		}
		if err := h.Presets.Put(ctx, s.Snapshot(name)); err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(fmt.Sprintf("✓ saved preset %q", name)), nil
	case "delete":
		if err := h.Presets.Delete(ctx, name); err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(fmt.Sprintf("✓ deleted preset %q", name)), nil
	}
	return errorResult(fmt.Sprintf("unknown action %q, use list, load, save or delete", action)), nil
}

// HandleMarkers implements the ftm/markers MCP tool.
func (h *Handlers) HandleMarkers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.Markers == nil {
		return errorResult("no marker store configured"), nil
	}
	args := req.GetArguments()
	action, _ := args["action"].(string)
	n := intArg(args["number"])

	switch action {
	case "status":
		ms, err := h.Markers.Status()
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(ms)
	case "create":
		if err := h.Markers.Create(n); err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(fmt.Sprintf("✓ created marker %d", n)), nil
	case "delete":
		if err := h.Markers.Delete(n); err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(fmt.Sprintf("✓ deleted marker %d", n)), nil
	}
	return errorResult(fmt.Sprintf("unknown action %q, use status, create or delete", action)), nil
}

// HandleSchema implements the ftm/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := preset.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func toWriteJSON(op *safewrite.Operation) writeJSON {
	if op == nil {
		return writeJSON{}
	}
	w := writeJSON{Path: op.Path, Outcome: string(op.Outcome)}
	if op.Outcome == safewrite.OutcomeFatal {
		w.BackupKept = op.BackupPath
	}
	return w
}

// stringArg accepts strings and JSON numbers, which agents send for
// numeric fields.
func stringArg(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return fmt.Sprint(x)
	}
	return ""
}

func intArg(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		n, _ := savefile.ParseInt(x)
		return n
	}
	return 0
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func writeError(response map[string]any, err error) (*mcp.CallToolResult, error) {
	response["error"] = err.Error()
	res, _ := jsonResult(response)
	res.IsError = true
	return res, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}

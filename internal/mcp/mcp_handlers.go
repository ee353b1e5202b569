package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/solarcorr/core/describe"
	"github.com/huangsam/solarcorr/core/join"
	"github.com/huangsam/solarcorr/core/regress"
	"github.com/huangsam/solarcorr/internal/catalog"
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

type regressionArgs struct {
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	LogX bool      `json:"log_x"`
}

type eventArg struct {
	Timestamp  string  `json:"timestamp"`
	Velocity   float64 `json:"velocity"`
	FlareClass string  `json:"flare_class"`
	Brightness float64 `json:"brightness"`
}

type sampleArg struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

type matchArgs struct {
	Events     []eventArg  `json:"events"`
	Samples    []sampleArg `json:"samples"`
	Param      string      `json:"param"`
	HalfWidth  string      `json:"half_width"`
	Aggregator string      `json:"aggregator"`
}

type summarizeArgs struct {
	Values []float64 `json:"values"`
}

// bindArgs decodes the tool arguments into target through their JSON form.
func bindArgs(request mcp.CallToolRequest, target any) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func textResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleCompareRegression(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args regressionArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	report := schema.RegressionReport{X: "x", Y: "y", LogX: args.LogX}
	x, y := args.X, args.Y
	if args.LogX {
		if len(x) != len(y) {
			return mcp.NewToolResultError(fmt.Sprintf("regression failed: %v", schema.ErrLengthMismatch)), nil
		}
		x, y, report.Dropped = describe.Log10(x, y)
	}

	comparison, err := regress.Compare(x, y)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("regression failed: %v", err)), nil
	}
	report.Comparison = comparison
	return textResult(report), nil
}

func (h *toolHandler) handleMatchEvents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args matchArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	halfWidth := h.baseCfg.HalfWidth
	if args.HalfWidth != "" {
		d, err := contract.ParseHalfWidth(args.HalfWidth)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid half_width: %v", err)), nil
		}
		halfWidth = d
	}
	agg := h.baseCfg.Aggregator
	if args.Aggregator != "" {
		agg = schema.Aggregator(strings.ToLower(args.Aggregator))
	}
	param := args.Param
	if param == "" {
		param = string(schema.ParamField)
	}

	events := make([]schema.Event, 0, len(args.Events))
	for i, e := range args.Events {
		ts, err := contract.ParseTimestamp(e.Timestamp, h.baseCfg.Location)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid event %d: %v", i, err)), nil
		}
		var intensity float64
		if e.FlareClass != "" {
			if intensity, err = catalog.ParseFlareClass(e.FlareClass); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid event %d: %v", i, err)), nil
			}
		}
		events = append(events, schema.Event{
			Timestamp:  ts,
			Velocity:   e.Velocity,
			FlareClass: e.FlareClass,
			Intensity:  intensity,
			Brightness: e.Brightness,
		})
	}

	samples := make([]schema.DenseSample, 0, len(args.Samples))
	for i, s := range args.Samples {
		ts, err := contract.ParseTimestamp(s.Timestamp, h.baseCfg.Location)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sample %d: %v", i, err)), nil
		}
		samples = append(samples, schema.DenseSample{Timestamp: ts, Value: s.Value})
	}
	series, err := schema.NewDenseSeries(param, samples)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid samples: %v", err)), nil
	}

	records, err := join.Match(events, series, halfWidth, agg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("match failed: %v", err)), nil
	}

	return textResult(schema.ParamJoin{
		Param:      param,
		Aggregator: agg,
		HalfWidth:  halfWidth,
		Records:    records,
		Summary:    join.Summarize(records),
	}), nil
}

func (h *toolHandler) handleSummarize(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args summarizeArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	summary, err := describe.Summarize(args.Values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return textResult(summary), nil
}

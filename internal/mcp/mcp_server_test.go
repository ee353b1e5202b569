package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/internal/contract"
	mcp_internal "github.com/huangsam/solarcorr/internal/mcp"
	"github.com/huangsam/solarcorr/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *server.MCPServer {
	t.Helper()
	baseCfg := &contract.Config{
		Aggregator: schema.MaxAgg,
		HalfWidth:  6 * time.Minute,
		Location:   time.UTC,
	}
	return mcp_internal.NewMCPServer(baseCfg)
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestCompareRegressionTool(t *testing.T) {
	s := newServer(t)

	t.Run("worked example", func(t *testing.T) {
		res := call(t, s, "compare_regression", map[string]any{
			"x": []any{1.0, 2.0, 3.0, 4.0, 5.0},
			"y": []any{2.0, 4.0, 5.0, 4.0, 5.0},
		})
		require.False(t, res.IsError, text(res))

		var report schema.RegressionReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		assert.InDelta(t, 0.6, report.Comparison.Manual.Slope, 1e-12)
		assert.InDelta(t, 2.2, report.Comparison.Oracle.Intercept, 1e-12)
		assert.True(t, report.Comparison.Agree)
	})

	t.Run("log x drops non-positive", func(t *testing.T) {
		res := call(t, s, "compare_regression", map[string]any{
			"x":     []any{-1.0, 10.0, 100.0, 1000.0, 10000.0},
			"y":     []any{0.0, 1.0, 2.0, 3.0, 5.0},
			"log_x": true,
		})
		require.False(t, res.IsError, text(res))

		var report schema.RegressionReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		assert.Equal(t, 1, report.Dropped)
		assert.Equal(t, 4, report.Comparison.Manual.N)
	})

	t.Run("degenerate", func(t *testing.T) {
		res := call(t, s, "compare_regression", map[string]any{
			"x": []any{5.0, 5.0, 5.0},
			"y": []any{1.0, 2.0, 3.0},
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), schema.ErrDegenerateInput.Error())
	})

	t.Run("insufficient", func(t *testing.T) {
		res := call(t, s, "compare_regression", map[string]any{
			"x": []any{1.0, 2.0},
			"y": []any{1.0, 2.0},
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), schema.ErrInsufficientSample.Error())
	})

	t.Run("wrong type", func(t *testing.T) {
		res := call(t, s, "compare_regression", map[string]any{
			"x": "1,2,3",
			"y": []any{1.0, 2.0, 3.0},
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid arguments")
	})
}

func TestMatchEventsTool(t *testing.T) {
	s := newServer(t)

	samples := []any{
		map[string]any{"timestamp": "2012-03-07T00:00:00Z", "value": 10.0},
		map[string]any{"timestamp": "2012-03-07T00:10:00Z", "value": 20.0},
	}

	t.Run("worked example", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events": []any{
				map[string]any{"timestamp": "2012-03-07T00:05:00Z", "brightness": 1.5},
				map[string]any{"timestamp": "2012-03-07 01:40:00"},
			},
			"samples":    samples,
			"param":      "MEANPOT",
			"aggregator": "mean",
		})
		require.False(t, res.IsError, text(res))

		var result schema.ParamJoin
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		assert.Equal(t, "MEANPOT", result.Param)
		assert.Equal(t, schema.MeanAgg, result.Aggregator)
		require.Len(t, result.Records, 2)
		assert.True(t, result.Records[0].Matched)
		assert.Equal(t, 15.0, result.Records[0].Value)
		assert.Equal(t, 2, result.Records[0].Candidates)
		assert.False(t, result.Records[1].Matched)
		assert.Equal(t, schema.JoinSummary{Total: 2, Matched: 1, Absent: 1}, result.Summary)

		var raw struct {
			Records []map[string]any `json:"records"`
		}
		require.NoError(t, json.Unmarshal([]byte(text(res)), &raw))
		assert.Contains(t, raw.Records[1], "value")
		assert.Nil(t, raw.Records[1]["value"], "absent value must be null")
	})

	t.Run("flare class intensity", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events": []any{
				map[string]any{"timestamp": "2012-03-07T00:05:00Z", "flare_class": "X2.1"},
				map[string]any{"timestamp": "2012-03-07T00:06:00Z", "flare_class": "M5.0"},
				map[string]any{"timestamp": "2012-03-07T00:07:00Z"},
			},
			"samples": samples,
		})
		require.False(t, res.IsError, text(res))

		var result schema.ParamJoin
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		require.Len(t, result.Records, 3)
		assert.InDelta(t, 21.0, result.Records[0].Event.Intensity, 1e-9)
		assert.InDelta(t, 5.0, result.Records[1].Event.Intensity, 1e-9)
		assert.Zero(t, result.Records[2].Event.Intensity)
	})

	t.Run("invalid flare class", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":  []any{map[string]any{"timestamp": "2012-03-07T00:05:00Z", "flare_class": "Xbig"}},
			"samples": samples,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid event 0")
	})

	t.Run("server defaults", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":  []any{map[string]any{"timestamp": "2012-03-07T00:05:00Z"}},
			"samples": samples,
		})
		require.False(t, res.IsError, text(res))

		var result schema.ParamJoin
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		assert.Equal(t, schema.MaxAgg, result.Aggregator)
		assert.Equal(t, 6*time.Minute, result.HalfWidth)
		assert.Equal(t, 20.0, result.Records[0].Value)
	})

	t.Run("invalid half width", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":     []any{},
			"samples":    samples,
			"half_width": "0 hours",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid half_width")
	})

	t.Run("unknown aggregator", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":     []any{},
			"samples":    samples,
			"aggregator": "mode",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), schema.ErrUnknownAggregator.Error())
	})

	t.Run("unordered samples", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":  []any{},
			"samples": []any{samples[1], samples[0]},
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid samples")
	})

	t.Run("bad event timestamp", func(t *testing.T) {
		res := call(t, s, "match_events", map[string]any{
			"events":  []any{map[string]any{"timestamp": "yesterday"}},
			"samples": samples,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid event 0")
	})
}

func TestSummarizeTool(t *testing.T) {
	s := newServer(t)

	res := call(t, s, "summarize", map[string]any{"values": []any{1.0, 2.0, 3.0, 4.0}})
	require.False(t, res.IsError, text(res))

	var summary schema.Summary
	require.NoError(t, json.Unmarshal([]byte(text(res)), &summary))
	assert.Equal(t, 4, summary.N)
	assert.Equal(t, 2.5, summary.Mean)
	assert.Equal(t, 2.5, summary.Median)

	res = call(t, s, "summarize", map[string]any{"values": []any{}})
	assert.True(t, res.IsError)
}

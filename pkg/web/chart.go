package web

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/store"
)

// parseSignals reads a comma-separated list of expression signal names.
func parseSignals(raw string) ([]expression.Signal, error) {
	if raw == "" {
		return nil, nil
	}
	var out []expression.Signal
	for _, name := range strings.Split(raw, ",") {
		sig := expression.Signal(strings.TrimSpace(name))
		if !slices.Contains(expression.All, sig) {
			return nil, fmt.Errorf("unknown signal %q", name)
		}
		out = append(out, sig)
	}
	return out, nil
}

// scoreChart plots the focus score over elapsed seconds. Requested signals
// are overlaid on the same 0-100 axis as percentages.
func scoreChart(r *store.Result, signals []expression.Signal) *charts.Line {
	title := r.Video
	if title == "" {
		title = r.ID
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Focus " + r.ID,
			Width:     "100%",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Focus over time",
			Subtitle: fmt.Sprintf("%s · %s · avg %d", title, r.Mode, r.Summary.AverageScore),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "seconds",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(signals) > 0)}),
	)

	items := make([]opts.LineData, 0, len(r.History))
	for _, h := range r.History {
		items = append(items, opts.LineData{Value: []interface{}{seconds(h.ElapsedMS), h.Score}})
	}
	line.AddSeries("score", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))

	for _, sig := range signals {
		items := make([]opts.LineData, 0, len(r.History))
		for _, h := range r.History {
			items = append(items, opts.LineData{Value: []interface{}{seconds(h.ElapsedMS), h.Signals[sig] * 100}})
		}
		line.AddSeries(string(sig), items)
	}
	return line
}

func seconds(ms int64) float64 {
	return float64(ms) / 1000
}

func renderChart(r *store.Result, signals []expression.Signal) ([]byte, error) {
	var buf bytes.Buffer
	if err := scoreChart(r, signals).Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

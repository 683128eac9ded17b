// Command selection-report renders an HTML page of diagnostic charts for the
// algorithm selection pipeline: the geometric dilution weighting curve and the
// final selector weight of every algorithm across the signal quality buckets.
// It has no effect on the positioning core; it exists so that weighting table
// changes can be eyeballed before they ship.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/gdop"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/selection"
)

var output = flag.String("o", "selection-report.html", "Output HTML file")

func main() {
	flag.Parse()

	page := components.NewPage()
	page.PageTitle = "Algorithm Selection Report"
	page.AddCharts(gdopFactorChart(), weightsBySignalChart(), weightsByAPCountChart())

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		log.Fatalf("failed to render report: %v", err)
	}
	log.Printf("wrote %s", *output)
}

// gdopFactorChart sweeps GDOP 0..12 in 0.25 steps and plots the accuracy
// scaling factor applied to position estimates.
func gdopFactorChart() *charts.Line {
	var xs []string
	var ys []opts.LineData
	for g := 0.0; g <= 12.0; g += 0.25 {
		xs = append(xs, fmt.Sprintf("%.2f", g))
		ys = append(ys, opts.LineData{Value: gdop.GDOPFactor(g)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "GDOP accuracy factor", Subtitle: "piecewise linear, capped at 4.0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "GDOP"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "factor"}),
	)
	line.SetXAxis(xs).AddSeries("factor", ys)
	return line
}

// weightsBySignalChart plots each algorithm's selector weight across the four
// signal quality buckets for a fixed four-AP, good-geometry, uniform context.
func weightsBySignalChart() *charts.Line {
	qualities := []factor.SignalQuality{
		factor.StrongSignal, factor.MediumSignal, factor.WeakSignal, factor.VeryWeakSignal,
	}
	var xs []string
	for _, q := range qualities {
		xs = append(xs, q.String())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Selector weights by signal quality", Subtitle: "four APs, good geometry, uniform distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)
	line.SetXAxis(xs)

	sel := selection.NewSelector()
	for _, typ := range algorithm.Types() {
		var ys []opts.LineData
		for _, q := range qualities {
			res := sel.Select(factor.SelectionContext{
				APCount:            factor.FourPlusAPs,
				SignalQuality:      q,
				GeometricQuality:   factor.GoodGDOPQuality,
				SignalDistribution: factor.UniformSignals,
			})
			ys = append(ys, opts.LineData{Value: res.Weights[typ]})
		}
		line.AddSeries(typ.String(), ys)
	}
	return line
}

// weightsByAPCountChart plots each algorithm's selector weight as AP count
// grows, with strong uniform signals and good geometry.
func weightsByAPCountChart() *charts.Line {
	counts := []factor.APCount{
		factor.SingleAP, factor.TwoAPs, factor.ThreeAPs, factor.FourPlusAPs,
	}
	var xs []string
	for _, c := range counts {
		xs = append(xs, c.String())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Selector weights by AP count", Subtitle: "strong uniform signals, good geometry"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)
	line.SetXAxis(xs)

	sel := selection.NewSelector()
	for _, typ := range algorithm.Types() {
		var ys []opts.LineData
		for _, c := range counts {
			geo := factor.GoodGDOPQuality
			if c < factor.ThreeAPs {
				geo = factor.PoorGDOPQuality
			}
			res := sel.Select(factor.SelectionContext{
				APCount:            c,
				SignalQuality:      factor.StrongSignal,
				GeometricQuality:   geo,
				SignalDistribution: factor.UniformSignals,
			})
			ys = append(ys, opts.LineData{Value: res.Weights[typ]})
		}
		line.AddSeries(typ.String(), ys)
	}
	return line
}

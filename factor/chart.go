package factor

import (
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineHistory generates an echart multi-line chart of a per iteration metric
// for each named series. Every series must have the same length as history.
func LineHistory(title string, history []Epoch, seriesName []string, metrics ...func(Epoch) float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: "iteration",
			},
		),
	)

	x := make([]int, 0, len(history))
	for _, epoch := range history {
		x = append(x, epoch.Iteration)
	}
	line = line.SetXAxis(x)

	for i, metric := range metrics {
		lineData := make([]opts.LineData, 0, len(history))
		for _, epoch := range history {
			lineData = append(lineData, opts.LineData{Value: metric(epoch)})
		}
		name := ""
		if i < len(seriesName) {
			name = seriesName[i]
		}
		line = line.AddSeries(name, lineData)
	}
	return line
}

// PlotHistory writes an html page charting the training objective, AUC and
// factor norms of a fit model
func (b *BPRMF) PlotHistory(path string) error {
	if b.history == nil {
		return ErrNotFitted
	}

	page := components.NewPage()
	page.AddCharts(
		LineHistory(
			"BPR Objective",
			b.history,
			[]string{"Objective"},
			func(e Epoch) float64 { return e.Objective },
		),
		LineHistory(
			"BPR AUC",
			b.history,
			[]string{"AUC"},
			func(e Epoch) float64 { return e.AUC },
		),
		LineHistory(
			"Factor Norms",
			b.history,
			[]string{"User", "Item"},
			func(e Epoch) float64 { return e.UserNorm },
			func(e Epoch) float64 { return e.ItemNorm },
		),
	)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return page.Render(io.MultiWriter(file))
}

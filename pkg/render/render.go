package render

import (
	"f1strategybot/pkg/helper"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	tableStrategy = "ESTRATEGIA"
	tableTime     = "TIEMPO"
	tableStops    = "PARADAS"
	tablePitLaps  = "VUELTAS PIT"
	tableStatus   = "ESTADO"
	tableStint    = "STINT"
	tableCompound = "GOMA"
	tableLaps     = "VUELTAS"
)

func newWriter(border bool) table.Writer {
	t := table.NewWriter()
	style := table.StyleRounded
	style.Options.DrawBorder = border
	t.SetStyle(style)
	return t
}

// Status is the one line verdict of a result.
func Status(r simulator.Result) string {
	switch {
	case r.Exhausted:
		return fmt.Sprintf("sin gomas en la vuelta %d", r.ExhaustedAtLap)
	case r.LimitsOverridden:
		return fmt.Sprintf("gomas pasadas desde la vuelta %d", r.OverriddenAtLap)
	}
	return "completada"
}

// RaceTime is the total time of a completed result, "-" otherwise.
func RaceTime(r simulator.Result) string {
	if !r.Completed() {
		return "-"
	}
	if r.TotalTime == 0 {
		return "0.000"
	}
	return fmt.Sprintf("%s (%.2fs)", helper.SecondsToRaceTime(r.TotalTime), r.TotalTime)
}

func ResultTable(sc strategy.Scenario, r simulator.Result) string {
	t := newWriter(true)
	t.AppendRow(table.Row{"Estrategia", sc.Name})
	t.AppendRow(table.Row{"Gomas", sc.Strategy.String()})
	t.AppendRow(table.Row{"Vueltas", r.TotalLaps})
	t.AppendRow(table.Row{"Política", r.Policy.String()})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Tiempo total", RaceTime(r)})
	t.AppendRow(table.Row{"Paradas", r.PitStops})
	t.AppendRow(table.Row{"Vueltas pit", helper.Laps(r.PitLaps)})
	t.AppendRow(table.Row{"Estado", Status(r)})
	return t.Render()
}

func ComparisonTable(scenarios strategy.Scenarios, results []simulator.Result) string {
	t := newWriter(false)
	t.AppendHeader(table.Row{tableStrategy, tableTime, tableStops, tablePitLaps, tableStatus})
	for i, sc := range scenarios {
		if i >= len(results) {
			break
		}
		r := results[i]
		t.AppendRow(table.Row{
			sc.Name,
			RaceTime(r),
			r.PitStops,
			helper.Laps(r.PitLaps),
			Status(r),
		})
	}
	return t.Render()
}

// StintTable lists the stints as driven. It needs a result with lap trace.
func StintTable(r simulator.Result) string {
	runs := r.Stints()
	if len(runs) == 0 {
		return ""
	}
	t := newWriter(false)
	t.AppendHeader(table.Row{tableStint, tableCompound, tableLaps, "DESDE", "HASTA"})
	for i, run := range runs {
		compound := string(run.Compound)
		if run.Overdrawn {
			compound += " (!)"
		}
		t.AppendRow(table.Row{i + 1, compound, run.Laps(), run.FirstLap, run.LastLap})
	}
	return t.Render()
}

// UsageBar draws one character per lap with the compound initial and a "|"
// before every pit lap, e.g. "SSSS|MMMM".
func UsageBar(r simulator.Result) string {
	var b strings.Builder
	for _, lap := range r.Laps {
		if lap.Pit {
			b.WriteString("|")
		}
		b.WriteString(lap.Compound.Short())
	}
	if r.Exhausted {
		b.WriteString("x")
	}
	return b.String()
}

package helper

import (
	"f1strategybot/pkg/tyres"
	"fmt"
	"hash/fnv"
	"strings"
)

// method to convert from seconds to minutes:seconds.milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int64(seconds*1000 + 0.5)
	minutes := total / 60000
	secs := (total % 60000) / 1000
	milliseconds := total % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, milliseconds)
}

// SecondsToRaceTime renders h:mm:ss.mmm, dropping the hours when zero.
func SecondsToRaceTime(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int64(seconds*1000 + 0.5)
	hours := total / 3600000
	if hours == 0 {
		return SecondsToMinutes(seconds)
	}
	total -= hours * 3600000
	return fmt.Sprintf("%d:%02d:%02d.%03d", hours, total/60000, (total%60000)/1000, total%1000)
}

// method to convert to seconds and 3 milliseconds
func ToSeconds(t float64) string {
	if t <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", t)
}

func CompoundSymbol(c tyres.Compound) string {
	switch c {
	case tyres.Soft:
		return "🔴"
	case tyres.Medium:
		return "🟡"
	case tyres.Hard:
		return "⚪"
	}
	return "🟢"
}

// Laps renders a list of lap numbers, "-" when empty.
func Laps(laps []int) string {
	if len(laps) == 0 {
		return "-"
	}
	parts := make([]string, len(laps))
	for i, l := range laps {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}

// convert name to a short hash usable in callback data
func ToID(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprint(h.Sum32())
}

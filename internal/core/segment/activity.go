package segment

import (
	"fmt"
	"math"

	"churnscope/internal/core/payload"
	"churnscope/internal/core/retention"
)

// SecondsPerTick is the duration of one active-time tick
const SecondsPerTick = 5

// DailyActivity is one day's validated session measurements
type DailyActivity struct {
	Day           string `json:"day"`
	SessionCount  int    `json:"session_count"`
	TotalSeconds  int64  `json:"total_seconds"`
	ActiveSeconds int64  `json:"active_seconds"`
}

// ExtractDailyActivity validates and sums the paired session arrays for one
// day record. Clean and aborted times concatenate into one sequence, ticks
// likewise; a pair is valid only when the time lies in (0, horizonSeconds),
// the tick lies in [0, horizonSeconds/SecondsPerTick), and tick*SecondsPerTick
// does not exceed the time. Invalid pairs are dropped, never clamped.
// Structural problems (missing clean times, mismatched lengths) yield an
// empty record rather than an error
func ExtractDailyActivity(day string, rec payload.DayRecord, horizonDays int) DailyActivity {
	out := DailyActivity{Day: day}
	if horizonDays <= 0 {
		horizonDays = retention.DefaultHorizonDays
	}
	horizonSeconds := float64(horizonDays) * 86400
	horizonTicks := horizonSeconds / SecondsPerTick

	sessions := rec[payload.ProviderAppSessions]
	if sessions == nil {
		return out
	}

	cleanSec, ok := payload.AsNums(sessions["cleanTotalTime"])
	if !ok || len(cleanSec) == 0 {
		return out
	}
	abortedSec, ok := payload.AsNums(sessions["abortedTotalTime"])
	if !ok {
		return out
	}
	// an absent or empty aborted array is fine; a populated one must pair up
	if len(abortedSec) != 0 && len(abortedSec) != len(cleanSec) {
		return out
	}
	cleanTicks, ok := payload.AsNums(sessions["cleanActiveTicks"])
	if !ok {
		return out
	}
	abortedTicks, ok := payload.AsNums(sessions["abortedActiveTicks"])
	if !ok {
		return out
	}

	allTimes := append(append([]payload.Num{}, cleanSec...), abortedSec...)
	allTicks := append(append([]payload.Num{}, cleanTicks...), abortedTicks...)
	if len(allTimes) != len(allTicks) {
		return out
	}

	for i, tm := range allTimes {
		tick := allTicks[i]
		if !tm.OK || tm.F <= 0 || tm.F >= horizonSeconds {
			continue
		}
		if !tick.OK || tick.F < 0 || tick.F >= horizonTicks {
			continue
		}
		if tick.F*SecondsPerTick > tm.F {
			continue
		}
		out.SessionCount++
		out.TotalSeconds += int64(tm.F)
		out.ActiveSeconds += int64(tick.F) * SecondsPerTick
	}
	return out
}

// Summary rolls the per-day records into corpus-level capped averages.
// Averages are rendered as strings because the caps are part of the value:
// "5+" sessions, "6+" hours, "5+" tenure years
type Summary struct {
	AverageSessionsPerDay string          `json:"average_sessions_per_day"`
	AverageHoursPerDay    string          `json:"average_hours_per_day"`
	TenureYears           string          `json:"years"`
	ByDay                 []DailyActivity `json:"by_day"`
}

// Summarize aggregates the per-day activity. activeDays is the active-day
// count N; N = 0 yields the degenerate all-zero summary. tenureDays is the
// whole-day span from profile creation to ping, negative when unknown
func Summarize(byDay []DailyActivity, activeDays int, tenureDays int) Summary {
	s := Summary{
		AverageSessionsPerDay: "0",
		AverageHoursPerDay:    "0.0",
		TenureYears:           "0",
		ByDay:                 byDay,
	}
	if s.ByDay == nil {
		s.ByDay = []DailyActivity{}
	}

	if activeDays > 0 {
		var sessions int
		var seconds int64
		for _, d := range byDay {
			sessions += d.SessionCount
			seconds += d.TotalSeconds
		}

		avgSessions := int(math.Floor(float64(sessions) / float64(activeDays)))
		if avgSessions >= 5 {
			s.AverageSessionsPerDay = "5+"
		} else {
			s.AverageSessionsPerDay = fmt.Sprintf("%d", avgSessions)
		}

		avgHours := (float64(seconds) / 3600) / float64(activeDays)
		if avgHours >= 6 {
			s.AverageHoursPerDay = "6+"
		} else {
			s.AverageHoursPerDay = fmt.Sprintf("%.1f", avgHours)
		}
	}

	if tenureDays > 0 {
		years := tenureDays / 365
		if years >= 5 {
			s.TenureYears = "5+"
		} else {
			s.TenureYears = fmt.Sprintf("%d", years)
		}
	}
	return s
}

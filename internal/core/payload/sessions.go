package payload

// SessionInfo is one prior session's wall-clock total and active ticks
type SessionInfo struct {
	Day         string
	Total       float64
	Clean       bool
	ActiveTicks float64
}

// SessionStartTimes is one session's startup milestones in milliseconds
type SessionStartTimes struct {
	Day             string
	Main            float64
	FirstPaint      float64
	SessionRestored float64
}

// SessionTimes iterates all prior sessions in day order. Each clean or
// aborted total time is paired with its active tick counter by index;
// entries whose counterpart is missing or non-numeric are skipped
func (p *Payload) SessionTimes() []SessionInfo {
	var out []SessionInfo
	for _, dd := range p.DailyProviderData(ProviderAppSessions, false) {
		f := dd.Data[ProviderAppSessions]
		out = appendSessionPairs(out, dd.Day, f["cleanTotalTime"], f["cleanActiveTicks"], true)
		out = appendSessionPairs(out, dd.Day, f["abortedTotalTime"], f["abortedActiveTicks"], false)
	}
	return out
}

func appendSessionPairs(out []SessionInfo, day string, times, ticks any, clean bool) []SessionInfo {
	ts, ok := AsNums(times)
	if !ok {
		return out
	}
	ks, ok := AsNums(ticks)
	if !ok {
		return out
	}
	for i, t := range ts {
		if !t.OK || i >= len(ks) || !ks[i].OK {
			continue
		}
		out = append(out, SessionInfo{Day: day, Total: t.F, Clean: clean, ActiveTicks: ks[i].F})
	}
	return out
}

// SessionStartTimes iterates all session startup measurements in day order.
// A session is reported only when main, firstPaint and sessionRestored are
// all present and numeric at the same index
func (p *Payload) SessionStartTimes() []SessionStartTimes {
	var out []SessionStartTimes
	for _, dd := range p.DailyProviderData(ProviderAppSessions, false) {
		f := dd.Data[ProviderAppSessions]
		mains, ok := AsNums(f["main"])
		if !ok {
			continue
		}
		fps, ok := AsNums(f["firstPaint"])
		if !ok {
			continue
		}
		srs, ok := AsNums(f["sessionRestored"])
		if !ok {
			continue
		}
		for i, m := range mains {
			if !m.OK || i >= len(fps) || !fps[i].OK || i >= len(srs) || !srs[i].OK {
				continue
			}
			out = append(out, SessionStartTimes{
				Day:             dd.Day,
				Main:            m.F,
				FirstPaint:      fps[i].F,
				SessionRestored: srs[i].F,
			})
		}
	}
	return out
}

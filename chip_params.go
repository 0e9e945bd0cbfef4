package at45

import "time"

type chipParams struct {
	name string

	// tSettle: delay after a page-size configuration write before the
	// status register reflects the new mode. Not specified in the
	// datasheet; 100ms is a safe empirical bound.
	tSettle time.Duration
}

const chipIDAT45DB041E = 0x0100241F

var knownChips = map[uint32]chipParams{
	chipIDAT45DB041E: {
		name:    "Adesto AT45DB041E",
		tSettle: 100 * time.Millisecond,
	},
}

func (f *Flash) paramOrMax(get func(*chipParams) time.Duration) time.Duration {
	// get parameter if configured
	if f.pr != nil {
		return get(f.pr)
	}

	// fall back to maximum duration from all known chip parameters
	var tmax time.Duration
	for _, param := range knownChips {
		tmax = max(tmax, get(&param))
	}
	return tmax
}

// SettleTime returns how long to wait after SetPageSize before trusting a
// status read.
func (f *Flash) SettleTime() time.Duration {
	return f.paramOrMax(func(p *chipParams) time.Duration { return p.tSettle })
}

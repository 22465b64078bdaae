package backtest

// FinalReturn returns the last point of the strategy curve, in percent.
func (r Result) FinalReturn() float64 {
	if len(r.SeasonalCurve) == 0 {
		return 0
	}
	return r.SeasonalCurve[len(r.SeasonalCurve)-1]
}

// FinalBuyHold returns the last point of the buy-and-hold curve, in percent.
func (r Result) FinalBuyHold() float64 {
	if len(r.BHCurve) == 0 {
		return 0
	}
	return r.BHCurve[len(r.BHCurve)-1]
}

// MaxDrawdown returns the largest peak-to-trough decline of the strategy
// curve as a positive percentage of the peak equity.
func (r Result) MaxDrawdown() float64 {
	return curveMaxDrawdown(r.SeasonalCurve)
}

func curveMaxDrawdown(curve []float64) float64 {
	maxDD := 0.0
	peak := 1.0
	for _, cum := range curve {
		equity := 1 + cum/100
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// TimeInMarket returns the fraction of curve days covered by trades.
func (r Result) TimeInMarket() float64 {
	if len(r.Dates) == 0 {
		return 0
	}
	inMarket := 0
	for _, t := range r.Trades {
		inMarket += t.Days
	}
	frac := float64(inMarket) / float64(len(r.Dates))
	if frac > 1 {
		return 1
	}
	return frac
}

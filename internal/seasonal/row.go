package seasonal

// SeasonalRow aggregates one period position (a week number or month name)
// across the lookback years. YearReturns holds the net percentage return per
// year, nil where the period had no trading days.
type SeasonalRow struct {
	Label       string
	YearReturns map[int]*float64
}

// Trend is a row's directional confidence: the share of observed years that
// closed green or red, whichever side is larger. Ties count as bullish.
type Trend struct {
	Pct     float64
	Bullish bool
}

// Average is the mean return over years with data, nil when none have any.
func (r SeasonalRow) Average() *float64 {
	var sum float64
	var count int
	for _, v := range r.YearReturns {
		if v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// Trend reports the dominant direction and its confidence percentage, nil
// when the row has no data.
func (r SeasonalRow) Trend() *Trend {
	var green, total int
	for _, v := range r.YearReturns {
		if v == nil {
			continue
		}
		total++
		if *v >= 0 {
			green++
		}
	}
	if total == 0 {
		return nil
	}
	greenPct := float64(green) / float64(total) * 100
	redPct := float64(total-green) / float64(total) * 100
	if greenPct >= redPct {
		return &Trend{Pct: greenPct, Bullish: true}
	}
	return &Trend{Pct: redPct, Bullish: false}
}

// ExpectedValue is |average| scaled by confidence, signed by direction:
// positive for bullish rows, negative for bearish ones. Nil without data.
func (r SeasonalRow) ExpectedValue() *float64 {
	avg := r.Average()
	trend := r.Trend()
	if avg == nil || trend == nil {
		return nil
	}
	magnitude := *avg
	if magnitude < 0 {
		magnitude = -magnitude
	}
	ev := magnitude * (trend.Pct / 100)
	if !trend.Bullish {
		ev = -ev
	}
	return &ev
}

// RunInfo marks one run of consecutive same-direction rows. Indexes are
// inclusive positions into the generating row sequence.
type RunInfo struct {
	StartIdx  int     `json:"start_idx"`
	EndIdx    int     `json:"end_idx"`
	IsBullish bool    `json:"is_bullish"`
	EVSum     float64 `json:"ev_sum"`
}

// Trade is one simulated round trip over a bullish run in a single year.
type Trade struct {
	RunIdx      int
	EntryPeriod string
	ExitPeriod  string
	PeriodsHeld int
	DaysHeld    int
	ProfitPct   float64
}

// YearlyTradeResult is the compounded outcome of trading every bullish run
// in one year, next to the full-year buy-and-hold baseline.
type YearlyTradeResult struct {
	Year             int
	Trades           []Trade
	TotalProfitPct   float64
	TotalDaysHeld    int
	BuyHoldProfitPct float64
}

package seasonal

import "fmt"

// DetectRuns walks the row sequence and collects runs of at least minLength
// consecutive rows sharing one expected-value direction. A row is neutral
// when it has no data or its trend confidence sits below thresholdPct
// (0-100); neutral rows never join a run and close any open one. A direction
// flip closes the open run and starts a new one at the flipping row.
func DetectRuns(rows []SeasonalRow, minLength int, thresholdPct float64) ([]RunInfo, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("invalid minimum run length %d: must be at least 1", minLength)
	}
	if thresholdPct < 0 || thresholdPct > 100 {
		return nil, fmt.Errorf("invalid threshold %v: must be within [0, 100]", thresholdPct)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var runs []RunInfo
	currentStart := 0
	var currentBullish *bool
	currentSum := 0.0

	closeRun := func(endIdx int) {
		if currentBullish != nil && endIdx-currentStart+1 >= minLength {
			runs = append(runs, RunInfo{
				StartIdx:  currentStart,
				EndIdx:    endIdx,
				IsBullish: *currentBullish,
				EVSum:     currentSum,
			})
		}
	}

	for i, row := range rows {
		ev := row.ExpectedValue()
		trend := row.Trend()
		neutral := ev == nil || trend == nil || trend.Pct < thresholdPct

		if neutral {
			closeRun(i - 1)
			currentBullish = nil
			currentSum = 0
			currentStart = i + 1
			continue
		}

		bullish := *ev >= 0
		switch {
		case currentBullish == nil:
			b := bullish
			currentBullish = &b
			currentStart = i
			currentSum = *ev
		case bullish == *currentBullish:
			currentSum += *ev
		default:
			closeRun(i - 1)
			b := bullish
			currentBullish = &b
			currentStart = i
			currentSum = *ev
		}
	}
	closeRun(len(rows) - 1)
	return runs, nil
}

// BuildRunMap flattens runs into row-level lookups for table rendering:
// the accumulated expected value keyed by each run's final row, and the run
// direction keyed by every member row.
func BuildRunMap(runs []RunInfo) (evAtEnd map[int]float64, membership map[int]bool) {
	evAtEnd = make(map[int]float64, len(runs))
	membership = make(map[int]bool)
	for _, run := range runs {
		evAtEnd[run.EndIdx] = run.EVSum
		for i := run.StartIdx; i <= run.EndIdx; i++ {
			membership[i] = run.IsBullish
		}
	}
	return evAtEnd, membership
}

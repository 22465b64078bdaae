package data

import (
	"sort"
	"time"

	"almanac/pkg/types"
)

// SynthesizeBasket builds an equal-weight synthetic series from the component
// series of a basket. Components are aligned on their common trading dates,
// each bar is expressed as a ratio to the previous common close, the ratios
// are averaged across components, and the averages are compounded into a new
// series rebased to 100. The first common date has no previous close and is
// dropped, so the result starts one bar after the components first overlap.
func SynthesizeBasket(series [][]types.Bar) []types.Bar {
	if len(series) == 0 {
		return nil
	}

	// Intersect trading dates across all components
	counts := make(map[int64]int)
	for _, bars := range series {
		seen := make(map[int64]bool)
		for _, bar := range bars {
			key := bar.Date.Unix()
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}

	var common []int64
	for key, n := range counts {
		if n == len(series) {
			common = append(common, key)
		}
	}
	if len(common) < 2 {
		return nil
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	indexes := make([]map[int64]types.Bar, len(series))
	for i, bars := range series {
		index := make(map[int64]types.Bar, len(bars))
		for _, bar := range bars {
			index[bar.Date.Unix()] = bar
		}
		indexes[i] = index
	}

	basket := make([]types.Bar, 0, len(common)-1)
	prevClose := 100.0
	n := float64(len(series))

	for i := 1; i < len(common); i++ {
		var sumOpen, sumHigh, sumLow, sumClose float64
		for _, index := range indexes {
			prev := index[common[i-1]].Close
			cur := index[common[i]]
			sumOpen += cur.Open / prev
			sumHigh += cur.High / prev
			sumLow += cur.Low / prev
			sumClose += cur.Close / prev
		}

		bar := types.Bar{
			Date:  time.Unix(common[i], 0).UTC(),
			Open:  prevClose * (sumOpen / n),
			High:  prevClose * (sumHigh / n),
			Low:   prevClose * (sumLow / n),
			Close: prevClose * (sumClose / n),
		}
		prevClose = bar.Close
		basket = append(basket, bar)
	}

	return basket
}

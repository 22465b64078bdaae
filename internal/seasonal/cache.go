package seasonal

import (
	"sort"

	"almanac/pkg/types"
)

// probeSlack bounds the nearest-trading-day search around a requested
// day-of-year. Five days covers any weekend-plus-holiday gap.
const probeSlack = 5

// ReturnsCache holds, per year, the cumulative product of daily close ratios
// keyed by day-of-year. Built once per series, immutable afterwards, safe for
// concurrent reads.
type ReturnsCache struct {
	years      []int
	cum        map[int]map[int]float64
	validRange map[int][2]int
}

// BuildReturnsCache slices the series per requested year and accumulates the
// close-ratio products. Years with fewer than two trading days are omitted
// entirely so they read as missing downstream, never as zero.
func BuildReturnsCache(bars []types.Bar, years []int) *ReturnsCache {
	c := &ReturnsCache{
		cum:        make(map[int]map[int]float64, len(years)),
		validRange: make(map[int][2]int, len(years)),
	}

	byYear := make(map[int][]types.Bar)
	for _, bar := range bars {
		y := bar.Date.Year()
		byYear[y] = append(byYear[y], bar)
	}

	for _, year := range years {
		yearBars := byYear[year]
		if len(yearBars) < 2 {
			continue
		}
		cum := make(map[int]float64, len(yearBars))
		running := 1.0
		prevClose := 0.0
		for i, bar := range yearBars {
			if i > 0 && prevClose > 0 {
				running *= bar.Close / prevClose
			}
			cum[DayOfYear(int(bar.Date.Month()), bar.Date.Day())] = running
			prevClose = bar.Close
		}
		first := DayOfYear(int(yearBars[0].Date.Month()), yearBars[0].Date.Day())
		last := DayOfYear(int(yearBars[len(yearBars)-1].Date.Month()), yearBars[len(yearBars)-1].Date.Day())
		c.cum[year] = cum
		c.validRange[year] = [2]int{first, last}
		c.years = append(c.years, year)
	}
	sort.Ints(c.years)
	return c
}

// Years lists the years that actually hold data, ascending.
func (c *ReturnsCache) Years() []int {
	out := make([]int, len(c.years))
	copy(out, c.years)
	return out
}

// GetReturn computes the percentage return between two days-of-year in one
// year. Each boundary snaps to the nearest available trading day within
// ±probeSlack (exact first, then outward, later day preferred on ties);
// startDOY 1 uses the literal 1.0 baseline instead of a lookup. Missing data
// at any point yields ok=false.
func (c *ReturnsCache) GetReturn(year, startDOY, endDOY int) (float64, bool) {
	cum, ok := c.cum[year]
	if !ok {
		return 0, false
	}
	vr := c.validRange[year]

	endCum, ok := resolveBoundary(cum, vr, endDOY)
	if !ok {
		return 0, false
	}
	base := 1.0
	if startDOY != 1 {
		base, ok = resolveBoundary(cum, vr, startDOY)
		if !ok {
			return 0, false
		}
	}
	if base == 0 {
		return 0, false
	}
	return (endCum/base - 1) * 100, true
}

func resolveBoundary(cum map[int]float64, validRange [2]int, doy int) (float64, bool) {
	if doy < validRange[0]-probeSlack || doy > validRange[1]+probeSlack {
		return 0, false
	}
	if v, ok := cum[doy]; ok {
		return v, true
	}
	for off := 1; off <= probeSlack; off++ {
		if v, ok := cum[doy+off]; ok {
			return v, true
		}
		if v, ok := cum[doy-off]; ok {
			return v, true
		}
	}
	return 0, false
}

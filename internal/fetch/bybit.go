package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"almanac/pkg/types"
)

const bybitPageLimit = 1000

// BybitFetcher implements HistoryFetcher for crypto pairs using the
// Bybit v5 market API. Only public endpoints are used, so no API keys
// are needed.
type BybitFetcher struct {
	client   *bybit_api.Client
	category string
}

// NewBybitFetcher creates a fetcher for spot pairs on the main network.
func NewBybitFetcher() *BybitFetcher {
	return &BybitFetcher{
		client:   bybit_api.NewBybitHttpClient("", "", bybit_api.WithBaseURL(bybit_api.MAINNET)),
		category: "spot",
	}
}

func (f *BybitFetcher) Name() string { return "bybit" }

// FetchDaily pages backwards through the kline endpoint until the start
// date (or the pair's listing date) is reached. Bybit returns at most
// 1000 candles per call, newest first.
func (f *BybitFetcher) FetchDaily(ctx context.Context, symbol string, start time.Time) ([]types.Bar, error) {
	var collected []types.Bar
	end := time.Now()

	for {
		reqParams := map[string]interface{}{
			"category": f.category,
			"symbol":   symbol,
			"interval": "D",
			"limit":    bybitPageLimit,
			"end":      end.UnixMilli(),
		}
		if !start.IsZero() {
			reqParams["start"] = start.UnixMilli()
		}

		result, err := f.client.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
		if err != nil {
			return nil, fmt.Errorf("bybit klines %s: %w", symbol, err)
		}

		page, err := parseKlineBars(result)
		if err != nil {
			return nil, fmt.Errorf("bybit klines %s: %w", symbol, err)
		}
		if len(page) == 0 {
			break
		}

		collected = append(collected, page...)

		earliest := page[len(page)-1].Date
		if len(page) < bybitPageLimit || (!start.IsZero() && !earliest.After(start)) {
			break
		}
		end = earliest.Add(-time.Millisecond)
	}

	// Newest-first pages flipped into one ascending series
	bars := make([]types.Bar, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		bar := collected[i]
		if !start.IsZero() && bar.Date.Before(start) {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKlineBars converts a kline API response into daily bars,
// preserving the response's newest-first order.
func parseKlineBars(response interface{}) ([]types.Bar, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	return klinesToBars(klineResult.List), nil
}

// klinesToBars maps raw kline rows to bars. Bybit kline format:
// [startTime, openPrice, highPrice, lowPrice, closePrice, volume, turnover]
func klinesToBars(list [][]string) []types.Bar {
	var bars []types.Bar
	for _, item := range list {
		if len(item) < 7 {
			continue // skip incomplete rows
		}

		closePrice := parseFloat64(item[4])
		if closePrice == 0 {
			continue
		}

		bars = append(bars, types.Bar{
			Date:   types.Day(time.UnixMilli(parseInt64(item[0])).UTC()),
			Open:   parseFloat64(item[1]),
			High:   parseFloat64(item[2]),
			Low:    parseFloat64(item[3]),
			Close:  closePrice,
			Volume: parseFloat64(item[5]),
		})
	}
	return bars
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

package fetch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"almanac/pkg/types"
)

// Default NSE endpoints for the symbol directory.
const (
	defaultNSEEquityURL  = "https://archives.nseindia.com/content/equities/EQUITY_L.csv"
	defaultNSEIndicesURL = "https://www.nseindia.com/api/allIndices"
	defaultNSEETFURL     = "https://www.nseindia.com/api/etf"
)

// Browser-like headers required for NSE API access.
var nseHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept":          "application/json",
	"Accept-Language": "en-US,en;q=0.9",
}

// nseToYahooIndex maps NSE index names to Yahoo Finance symbols. Yahoo
// uses non-standard tickers for Indian indices, so unmapped indices are
// skipped rather than guessed.
var nseToYahooIndex = map[string]string{
	"NIFTY 50":                       "^NSEI",
	"NIFTY BANK":                     "^NSEBANK",
	"S&P BSE SENSEX":                 "^BSESN",
	"INDIA VIX":                      "^INDIAVIX",
	"NIFTY IT":                       "^CNXIT",
	"NIFTY AUTO":                     "^CNXAUTO",
	"NIFTY PHARMA":                   "^CNXPHARMA",
	"NIFTY FMCG":                     "^CNXFMCG",
	"NIFTY METAL":                    "^CNXMETAL",
	"NIFTY REALTY":                   "^CNXREALTY",
	"NIFTY PSU BANK":                 "^CNXPSUBANK",
	"NIFTY FINANCIAL SERVICES 25/50": "^CNXFIN",
	"NIFTY INFRA":                    "^CNXINFRA",
	"NIFTY ENERGY":                   "^CNXENERGY",
	"NIFTY MEDIA":                    "^CNXMEDIA",
	"NIFTY SERV SECTOR":              "^CNXSERVICE",
	"NIFTY MIDCAP 50":                "^NSEMDCP50",
	"NIFTY NEXT 50":                  "^NSMIDCP",
	"NIFTY PSE":                      "^CNXPSE",
	"NIFTY 100":                      "^CNX100",
	"NIFTY 200":                      "^CNX200",
	"NIFTY SMALLCAP 100":             "^CNXSC",
	"NIFTY 500":                      "^CRSLDX",
}

// DirectoryBuilder downloads the NSE equity list, indices and ETFs and
// combines them into one symbol directory for autocomplete.
type DirectoryBuilder struct {
	Client     *http.Client
	EquityURL  string
	IndicesURL string
	ETFURL     string
}

// NewDirectoryBuilder creates a builder against the public NSE endpoints.
func NewDirectoryBuilder() *DirectoryBuilder {
	return &DirectoryBuilder{
		Client:     &http.Client{Timeout: 30 * time.Second},
		EquityURL:  defaultNSEEquityURL,
		IndicesURL: defaultNSEIndicesURL,
		ETFURL:     defaultNSEETFURL,
	}
}

// Build downloads all three sources, tolerating partial failures, and
// returns the combined directory sorted by symbol. Equity and ETF
// tickers get the .NS suffix Yahoo expects.
func (b *DirectoryBuilder) Build(ctx context.Context) ([]types.SymbolInfo, error) {
	var symbols []types.SymbolInfo

	equities, err := b.downloadEquities(ctx)
	if err != nil {
		log.Printf("⚠️ Could not download NSE equities: %v", err)
	}
	symbols = append(symbols, equities...)

	indices, err := b.downloadIndices(ctx)
	if err != nil {
		log.Printf("⚠️ Could not download NSE indices: %v", err)
	}
	symbols = append(symbols, indices...)

	etfs, err := b.downloadETFs(ctx)
	if err != nil {
		log.Printf("⚠️ Could not download NSE ETFs: %v", err)
	}
	symbols = append(symbols, etfs...)

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols downloaded from any NSE source")
	}

	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Symbol < symbols[j].Symbol })
	return symbols, nil
}

func (b *DirectoryBuilder) downloadEquities(ctx context.Context) ([]types.SymbolInfo, error) {
	body, err := b.get(ctx, b.EquityURL)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1

	// Skip the EQUITY_L.csv header (SYMBOL, NAME OF COMPANY, ...)
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	var equities []types.SymbolInfo
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		symbol := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if symbol == "" || name == "" {
			continue
		}
		equities = append(equities, types.SymbolInfo{Symbol: symbol + ".NS", Name: name})
	}

	log.Printf("✅ Downloaded %d equities from NSE", len(equities))
	return equities, nil
}

func (b *DirectoryBuilder) downloadIndices(ctx context.Context) ([]types.SymbolInfo, error) {
	var payload struct {
		Data []struct {
			Index string `json:"index"`
		} `json:"data"`
	}
	if err := b.getJSON(ctx, b.IndicesURL, &payload); err != nil {
		return nil, err
	}

	var indices []types.SymbolInfo
	unmapped := 0
	for _, item := range payload.Data {
		name := strings.TrimSpace(item.Index)
		if name == "" {
			continue
		}
		yahooSymbol, ok := nseToYahooIndex[name]
		if !ok {
			unmapped++
			continue
		}
		indices = append(indices, types.SymbolInfo{Symbol: yahooSymbol, Name: "[INDEX] " + name})
	}

	log.Printf("✅ Downloaded %d indices with Yahoo mappings (%d unmapped)", len(indices), unmapped)
	return indices, nil
}

func (b *DirectoryBuilder) downloadETFs(ctx context.Context) ([]types.SymbolInfo, error) {
	var payload struct {
		Data []struct {
			Symbol string `json:"symbol"`
			Assets string `json:"assets"`
			Meta   *struct {
				CompanyName string `json:"companyName"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := b.getJSON(ctx, b.ETFURL, &payload); err != nil {
		return nil, err
	}

	var etfs []types.SymbolInfo
	for _, item := range payload.Data {
		symbol := strings.TrimSpace(item.Symbol)
		name := ""
		if item.Meta != nil {
			name = strings.TrimSpace(item.Meta.CompanyName)
		}
		if name == "" {
			name = strings.TrimSpace(item.Assets)
		}
		if symbol == "" || name == "" {
			continue
		}
		etfs = append(etfs, types.SymbolInfo{Symbol: symbol + ".NS", Name: "[ETF] " + name})
	}

	log.Printf("✅ Downloaded %d ETFs from NSE", len(etfs))
	return etfs, nil
}

func (b *DirectoryBuilder) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range nseHeaders {
		req.Header.Set(key, value)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return body, nil
}

func (b *DirectoryBuilder) getJSON(ctx context.Context, url string, out interface{}) error {
	body, err := b.get(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

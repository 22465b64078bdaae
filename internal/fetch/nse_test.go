package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const equityCSV = "SYMBOL,NAME OF COMPANY,SERIES,DATE OF LISTING\n" +
	"TCS,Tata Consultancy Services Limited,EQ,2004-08-25\n" +
	"INFY,Infosys Limited,EQ,1995-06-08\n"

const indicesJSON = `{"data":[
	{"index":"NIFTY 50"},
	{"index":"OBSCURE SECTORAL INDEX"},
	{"index":""}
]}`

const etfJSON = `{"data":[
	{"symbol":"NIFTYBEES","assets":"Nifty 50","meta":{"companyName":"Nippon India ETF Nifty 50 BeES"}},
	{"symbol":"GOLDBEES","assets":"Gold","meta":null}
]}`

func newDirectoryTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/equity.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(equityCSV))
	})
	mux.HandleFunc("/indices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indicesJSON))
	})
	mux.HandleFunc("/etf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(etfJSON))
	})
	return httptest.NewServer(mux)
}

func newTestDirectoryBuilder(srv *httptest.Server) *DirectoryBuilder {
	b := NewDirectoryBuilder()
	b.EquityURL = srv.URL + "/equity.csv"
	b.IndicesURL = srv.URL + "/indices"
	b.ETFURL = srv.URL + "/etf"
	return b
}

func TestDirectoryBuilder_Build(t *testing.T) {
	srv := newDirectoryTestServer()
	defer srv.Close()

	symbols, err := newTestDirectoryBuilder(srv).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 5)

	// Sorted by symbol; carets sort after letters
	assert.Equal(t, "GOLDBEES.NS", symbols[0].Symbol)
	assert.Equal(t, "[ETF] Gold", symbols[0].Name)
	assert.Equal(t, "INFY.NS", symbols[1].Symbol)
	assert.Equal(t, "NIFTYBEES.NS", symbols[2].Symbol)
	assert.Equal(t, "[ETF] Nippon India ETF Nifty 50 BeES", symbols[2].Name)
	assert.Equal(t, "TCS.NS", symbols[3].Symbol)
	assert.Equal(t, "^NSEI", symbols[4].Symbol)
	assert.Equal(t, "[INDEX] NIFTY 50", symbols[4].Name)
}

func TestDirectoryBuilder_PartialFailureStillBuilds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/equity.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(equityCSV))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	symbols, err := newTestDirectoryBuilder(srv).Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, symbols, 2)
}

func TestDirectoryBuilder_AllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestDirectoryBuilder(srv).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbols downloaded")
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/internal/config"
	"stockboard/internal/fakegateway"
	"stockboard/internal/gateway"
	"stockboard/internal/pin"
	"stockboard/internal/util"
)

func newTestApp(t *testing.T, stdin string) (*app, *fakegateway.Server, *bytes.Buffer) {
	t.Helper()
	fg := fakegateway.New(nil, util.DiscardLogger())
	ts := httptest.NewServer(fg.Handler())
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	logger := util.DiscardLogger()
	return &app{
		cfg:    config.Default(),
		client: gateway.NewClient(ts.URL, gateway.WithLogger(logger)),
		out:    out,
		in:     strings.NewReader(stdin),
		log:    logger,
		now: func() time.Time {
			return time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC) // Wed 11:00 ET
		},
	}, fg, out
}

func TestRunVersion(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"version"}))
	assert.Equal(t, "stockboard-cli "+version+"\n", out.String())
}

func TestRunUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	assert.ErrorIs(t, a.run(context.Background(), []string{"bogus"}), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), nil), errUsage)
}

func TestRunStatus(t *testing.T) {
	a, fg, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "market:  OPEN")
	assert.Contains(t, out.String(), "ok")

	fg.Fail(fakegateway.OpPing, http.StatusBadGateway)
	out.Reset()
	err := a.run(context.Background(), []string{"status"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindStatus, gateway.KindOf(err))
	assert.Contains(t, out.String(), "unreachable")
}

func TestRunExploreFilters(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"explore", "-min-price", "200", "-sort", "currentPrice", "-order", "desc"}))

	s := out.String()
	assert.Contains(t, s, "MSFT")
	assert.Contains(t, s, "TSLA")
	assert.NotContains(t, s, "AAPL")
	assert.NotContains(t, s, "NVDA") // pinned stocks are not explorable
	assert.Less(t, strings.Index(s, "MSFT"), strings.Index(s, "TSLA"))
	assert.Contains(t, s, "2 of 4 stocks")
}

func TestRunExploreBadSort(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	assert.Error(t, a.run(context.Background(), []string{"explore", "-sort", "volume"}))
}

func TestRunPinAndUnpin(t *testing.T) {
	a, fg, out := newTestApp(t, "y\n")

	require.NoError(t, a.run(context.Background(), []string{"pin", "aapl"}))
	assert.Contains(t, out.String(), "pinned AAPL")
	assert.Equal(t, []string{"NVDA", "AAPL"}, fg.PinnedTickers())

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"unpin", "NVDA"}))
	assert.Contains(t, out.String(), "Unpin NVDA? [y/N]")
	assert.Contains(t, out.String(), "unpinned NVDA")
	assert.Equal(t, []string{"AAPL"}, fg.PinnedTickers())
}

func TestRunUnpinDeclined(t *testing.T) {
	a, fg, _ := newTestApp(t, "n\n")
	err := a.run(context.Background(), []string{"unpin", "NVDA"})
	assert.ErrorIs(t, err, pin.ErrDeclined)
	assert.Equal(t, []string{"NVDA"}, fg.PinnedTickers())
	assert.Zero(t, fg.Calls(fakegateway.OpUnpin))
}

func TestRunUnpinYesSkipsPrompt(t *testing.T) {
	a, fg, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"unpin", "--yes", "NVDA"}))
	assert.NotContains(t, out.String(), "[y/N]")
	assert.Empty(t, fg.PinnedTickers())
}

func TestRunPinNeedsTicker(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	assert.ErrorIs(t, a.run(context.Background(), []string{"pin"}), errUsage)
}

func TestRunStock(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"stock", "-timeframe", "1m", "AAPL"}))
	s := out.String()
	assert.Contains(t, s, "2024-05-06")
	assert.Contains(t, s, "AAPL 1M  $181.70 -> $183.10")
}

func TestRunNews(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"news"}))
	s := out.String()
	assert.Contains(t, s, "Stocks edge higher ahead of CPI")
	assert.Less(t, strings.Index(s, "CPI"), strings.Index(s, "Oil slips"))

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"news", "-ticker", "aapl"}))
	assert.Contains(t, out.String(), "Apple unveils new iPad lineup")

	assert.Error(t, a.run(context.Background(), []string{"news", "-category", "sports"}))
}

func TestRunSummary(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"summary", "market"}))
	assert.Contains(t, out.String(), "Markets were mixed")

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"summary", "portfolio"}))
	assert.Contains(t, out.String(), "NVDA")

	assert.ErrorIs(t, a.run(context.Background(), []string{"summary"}), errUsage)
}

func TestRunOverview(t *testing.T) {
	a, fg, out := newTestApp(t, "")
	require.NoError(t, a.run(context.Background(), []string{"overview"}))
	s := out.String()
	assert.Contains(t, s, "NVDA")
	assert.Contains(t, s, "Portfolio (")
	assert.Contains(t, s, "Market (neutral)")

	fg.Fail(fakegateway.OpMarketSummary, http.StatusInternalServerError)
	err := a.run(context.Background(), []string{"overview"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusOf(err))
}

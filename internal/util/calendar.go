package util

import (
	"fmt"
	"time"

	"stockboard/internal/domain"
)

// TradingCalendar answers market-hours questions for a market. Only the US
// regular session (09:30-16:00 America/New_York, Monday to Friday) is
// modelled; exchange holidays are not.
type TradingCalendar struct {
	market domain.Market
	loc    *time.Location
	open   time.Duration // offset from local midnight
	close  time.Duration
}

// NewTradingCalendar creates a TradingCalendar for the given market.
func NewTradingCalendar(market domain.Market) (*TradingCalendar, error) {
	if market != domain.MarketUS {
		return nil, fmt.Errorf("unsupported market %q", market)
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return &TradingCalendar{
		market: market,
		loc:    loc,
		open:   9*time.Hour + 30*time.Minute,
		close:  16 * time.Hour,
	}, nil
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (tc *TradingCalendar) session(t time.Time) (open, close time.Time) {
	y, m, d := t.In(tc.loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, tc.loc)
	return midnight.Add(tc.open), midnight.Add(tc.close)
}

// IsMarketOpen returns whether the regular session is in progress at t.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	local := t.In(tc.loc)
	if !isWeekday(local) {
		return false
	}
	open, close := tc.session(local)
	return !local.Before(open) && local.Before(close)
}

// NextOpen returns the next session open at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	local := t.In(tc.loc)
	for i := 0; i < 8; i++ {
		day := local.AddDate(0, 0, i)
		if !isWeekday(day) {
			continue
		}
		open, _ := tc.session(day)
		if !open.Before(local) {
			return open
		}
	}
	return time.Time{}
}

// NextClose returns the next session close at or after t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	local := t.In(tc.loc)
	for i := 0; i < 8; i++ {
		day := local.AddDate(0, 0, i)
		if !isWeekday(day) {
			continue
		}
		_, close := tc.session(day)
		if !close.Before(local) {
			return close
		}
	}
	return time.Time{}
}

// Status describes the session state at t, e.g. "OPEN until 16:00 ET" or
// "CLOSED, opens Mon 09:30 ET".
func (tc *TradingCalendar) Status(t time.Time) string {
	if tc.IsMarketOpen(t) {
		return "OPEN until " + tc.NextClose(t).Format("15:04") + " ET"
	}
	return "CLOSED, opens " + tc.NextOpen(t).Format("Mon 15:04") + " ET"
}

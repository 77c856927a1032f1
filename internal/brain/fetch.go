package brain

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Metric sections fetched independently
const (
	SectionFinancials = "financials"
	SectionPrices     = "prices"
	SectionMarketCap  = "market_cap"
	SectionInsider    = "insider_trades"
	SectionNews       = "news"
)

var sectionOrder = []string{SectionFinancials, SectionPrices, SectionMarketCap, SectionInsider, SectionNews}

// fetch loads every section concurrently, each under its own timeout
// A section that errors or times out is left empty and reported as missing.
func (e *Evaluator) fetch(ctx context.Context, code string, asOf time.Time, lookback int) (*contracts.RawRecord, []string) {
	raw := &contracts.RawRecord{Code: code, AsOf: asOf}
	w := e.policy.Fetch

	var (
		mu     sync.Mutex
		failed = make(map[string]bool)
	)

	// load returns an apply func so results are only written to raw by the
	// section goroutine, never by a load that outlived its timeout
	type loaded struct {
		apply func()
		err   error
	}

	section := func(g *errgroup.Group, name string, load func(ctx context.Context) (func(), error)) {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()

			done := make(chan loaded, 1)
			go func() {
				apply, err := load(sctx)
				done <- loaded{apply: apply, err: err}
			}()

			var err error
			select {
			case res := <-done:
				if err = res.err; err == nil {
					mu.Lock()
					res.apply()
					mu.Unlock()
				}
			case <-sctx.Done():
				err = sctx.Err()
			}

			if err != nil {
				e.logger.WithError(err).WithFields(map[string]interface{}{
					"code":    code,
					"section": name,
				}).Warn("Section fetch failed, treating as missing")
				e.metrics.RecordFetchError(name)

				mu.Lock()
				failed[name] = true
				mu.Unlock()
			}
			return nil
		})
	}

	var g errgroup.Group
	section(&g, SectionFinancials, func(ctx context.Context) (func(), error) {
		periods, err := e.source.Financials(ctx, code, asOf, lookback)
		return func() { raw.Periods = periods }, err
	})
	section(&g, SectionPrices, func(ctx context.Context) (func(), error) {
		prices, err := e.source.Prices(ctx, code, asOf.AddDate(0, 0, -w.PriceWindowDays), asOf)
		return func() { raw.Prices = prices }, err
	})
	section(&g, SectionMarketCap, func(ctx context.Context) (func(), error) {
		mc, err := e.source.MarketCap(ctx, code, asOf)
		return func() { raw.MarketCap = mc }, err
	})
	section(&g, SectionInsider, func(ctx context.Context) (func(), error) {
		trades, err := e.source.InsiderTrades(ctx, code, asOf.AddDate(0, 0, -w.InsiderWindowDays), asOf)
		return func() { raw.Insider = trades }, err
	})
	section(&g, SectionNews, func(ctx context.Context) (func(), error) {
		news, err := e.source.News(ctx, code, asOf.AddDate(0, 0, -w.NewsWindowDays), asOf)
		return func() { raw.News = news }, err
	})
	_ = g.Wait()

	var missing []string
	for _, name := range sectionOrder {
		if failed[name] {
			missing = append(missing, name)
		}
	}
	return raw, missing
}

package conflicts

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/derekprior/courtplan/internal/tournament"
)

// GridDates returns the distinct dates that carry at least one grid
// placement, in calendar order.
func GridDates(matchUps []tournament.MatchUp) []string {
	var dates []string
	for _, m := range matchUps {
		if m.Schedule.HasGridPosition() && !slices.Contains(dates, m.Schedule.ScheduledDate) {
			dates = append(dates, m.Schedule.ScheduledDate)
		}
	}
	slices.Sort(dates)
	return dates
}

// AnalyzeByDate runs ProConflicts once per grid date, concurrently, and
// returns the results keyed by date. opts.ScheduledDate is ignored.
// matchUps is only read.
func AnalyzeByDate(ctx context.Context, matchUps []tournament.MatchUp, opts Options) (map[string]*Result, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]*Result)
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, date := range GridDates(matchUps) {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			o := opts
			o.ScheduledDate = date
			o.Logger = opts.Logger.With().Str("date", date).Logger()
			r, err := ProConflicts(matchUps, o)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", date, err)
			}
			mu.Lock()
			out[date] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

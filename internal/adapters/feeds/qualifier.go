package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/pitchplus/internal/domain/qualify"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// Qualifier scrapes team games played, one qualifying inning per game.
type Qualifier struct {
	*client
	url    string
	season int
}

// NewQualifier creates a qualification feed reading the season column.
func NewQualifier(url string, season int, opts ...Option) *Qualifier {
	return &Qualifier{client: newClient("qualifier", opts...), url: url, season: season}
}

// Fetch returns the per-team innings thresholds.
func (q *Qualifier) Fetch(ctx context.Context) (qualify.Thresholds, error) {
	body, err := q.get(ctx, q.url)
	if err != nil {
		return nil, err
	}
	th, err := ParseQualifierTable(bytes.NewReader(body), q.season)
	if err != nil {
		return nil, err
	}
	metrics.RecordFeedRows("qualifier", len(th))
	q.logger.Info(ctx, "qualifier fetched", logger.Int("teams", len(th)))
	return th, nil
}

// ParseQualifierTable reads the first table on the page. Team names are
// mapped to abbreviations; rows without a numeric season value are skipped.
func ParseQualifierTable(body io.Reader, season int) (qualify.Thresholds, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFeed, err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table", ErrBadFeed)
	}

	teamCol, seasonCol := -1, -1
	want := strconv.Itoa(season)
	table.Find("thead tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		switch strings.TrimSpace(th.Text()) {
		case "Team":
			teamCol = i
		case want:
			seasonCol = i
		}
	})
	if teamCol < 0 || seasonCol < 0 {
		return nil, fmt.Errorf("%w: missing Team or %s column", ErrBadFeed, want)
	}

	th := make(qualify.Thresholds)
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		team := strings.TrimSpace(tds.Eq(teamCol).Text())
		v := parseFloat(strings.TrimSpace(tds.Eq(seasonCol).Text()))
		if team == "" || math.IsNaN(v) {
			return
		}
		th[qualify.Abbreviate(team)] = v
	})
	return th, nil
}

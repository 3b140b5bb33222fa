package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// mlb.com stats table cells.
const (
	colTeam = "1"
	colIP   = "11"
	colWHIP = "19"
)

// Roster scrapes the mlb.com pitching stats table for team, IP and WHIP.
type Roster struct {
	*client
	baseURL string
	pages   int
}

// NewRoster creates a roster feed that reads at most pages pages.
func NewRoster(baseURL string, pages int, opts ...Option) *Roster {
	if pages < 1 {
		pages = 1
	}
	return &Roster{client: newClient("roster", opts...), baseURL: baseURL, pages: pages}
}

// Fetch reads pages until one reports no results or the page limit is hit.
func (r *Roster) Fetch(ctx context.Context) ([]model.RosterEntry, error) {
	var out []model.RosterEntry
	for page := 1; page <= r.pages; page++ {
		u := r.baseURL
		if page > 1 {
			u += "&page=" + strconv.Itoa(page)
		}
		body, err := r.get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("roster page %d: %w", page, err)
		}
		entries, more, err := ParseRosterPage(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("roster page %d: %w", page, err)
		}
		if !more {
			break
		}
		out = append(out, entries...)
	}
	metrics.RecordFeedRows("roster", len(out))
	r.logger.Info(ctx, "roster fetched", logger.Int("pitchers", len(out)))
	return out, nil
}

// ParseRosterPage extracts one page of the stats table. more is false when
// the page carries the no-results marker.
func ParseRosterPage(body io.Reader) (entries []model.RosterEntry, more bool, err error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrBadFeed, err)
	}
	if doc.Find(`div[class^="no-results-message"]`).Length() > 0 {
		return nil, false, nil
	}

	table := doc.Find("div.stats-body-table.player")
	if table.Length() == 0 {
		return nil, false, fmt.Errorf("%w: stats table not found", ErrBadFeed)
	}
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		a := tr.Find(`a.bui-link[tabindex="0"]`).First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		id := path.Base(strings.TrimRight(href, "/"))
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return
		}
		name, ok := a.Attr("aria-label")
		if !ok {
			name = strings.TrimSpace(a.Text())
		}
		entries = append(entries, model.RosterEntry{
			PlayerID: id,
			Name:     name,
			Team:     cell(tr, colTeam),
			IP:       parseFloat(cell(tr, colIP)),
			WHIP:     parseFloat(cell(tr, colWHIP)),
		})
	})
	return entries, true, nil
}

func cell(tr *goquery.Selection, col string) string {
	return strings.TrimSpace(tr.Find(`td[data-col="` + col + `"]`).First().Text())
}

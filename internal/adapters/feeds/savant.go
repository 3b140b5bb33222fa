package feeds

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchplus/internal/domain/dedupe"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

const dateLayout = "2006-01-02"

// savantColumns are the CSV headers read from the statcast search export.
var savantColumns = []string{
	"game_pk", "at_bat_number", "pitch_number", "game_date", "pitcher", "player_name",
	"stand", "p_throws", "pitch_name", "game_type", "description",
	"release_speed", "pfx_x", "pfx_z", "release_pos_x", "release_pos_z",
	"release_spin_rate", "release_extension", "plate_x", "plate_z",
	"balls", "strikes", "zone",
}

// Savant fetches pitch-level statcast data.
type Savant struct {
	*client
	baseURL   string
	chunkDays int
}

// NewSavant creates a savant feed. chunkDays below 1 means 6.
func NewSavant(baseURL string, chunkDays int, opts ...Option) *Savant {
	if chunkDays < 1 {
		chunkDays = 6
	}
	return &Savant{client: newClient("savant", opts...), baseURL: baseURL, chunkDays: chunkDays}
}

// Fetch returns every pitch thrown between start and end inclusive, in
// chunk order, with duplicates across chunks removed.
func (s *Savant) Fetch(ctx context.Context, start, end time.Time) ([]model.PitchRecord, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("savant range %s..%s: end before start", start.Format(dateLayout), end.Format(dateLayout))
	}
	d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(1 << 16))
	var out []model.PitchRecord
	dropped := 0
	for _, ch := range Chunks(start, end, s.chunkDays) {
		body, err := s.get(ctx, s.chunkURL(ch[0], ch[1]))
		if err != nil {
			return nil, err
		}
		recs, err := ParseSavantCSV(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("savant %s..%s: %w", ch[0].Format(dateLayout), ch[1].Format(dateLayout), err)
		}
		recs, n := dedupe.Pitches(d, recs)
		dropped += n
		out = append(out, recs...)
		s.logger.Debug(ctx, "savant chunk fetched",
			logger.String("from", ch[0].Format(dateLayout)),
			logger.String("to", ch[1].Format(dateLayout)),
			logger.Int("pitches", len(recs)),
		)
	}
	metrics.RecordFeedRows("savant", len(out))
	s.logger.Info(ctx, "savant fetched", logger.Int("pitches", len(out)), logger.Int("duplicates", dropped))
	return out, nil
}

func (s *Savant) chunkURL(from, to time.Time) string {
	q := url.Values{}
	q.Set("all", "true")
	q.Set("hfGT", "R|")
	q.Set("player_type", "pitcher")
	q.Set("game_date_gt", from.Format(dateLayout))
	q.Set("game_date_lt", to.Format(dateLayout))
	q.Set("min_pitches", "0")
	q.Set("min_results", "0")
	q.Set("group_by", "name")
	q.Set("sort_col", "pitches")
	q.Set("sort_order", "desc")
	q.Set("min_abs", "0")
	q.Set("type", "details")
	return s.baseURL + "?" + q.Encode()
}

// Chunks splits [start, end] into consecutive inclusive ranges of at most
// days days.
func Chunks(start, end time.Time, days int) [][2]time.Time {
	var out [][2]time.Time
	for from := start; !from.After(end); from = from.AddDate(0, 0, days) {
		to := from.AddDate(0, 0, days-1)
		if to.After(end) {
			to = end
		}
		out = append(out, [2]time.Time{from, to})
	}
	return out
}

// ParseSavantCSV reads the statcast export by header name. Empty or
// unparseable measurements become NaN; identity columns must parse.
func ParseSavantCSV(r io.Reader) ([]model.PitchRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadFeed, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, c := range savantColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadFeed, c)
		}
	}

	var out []model.PitchRecord
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadFeed, line, err)
		}
		col := func(name string) string { return strings.TrimSpace(rec[idx[name]]) }
		num := func(name string) float64 { return parseFloat(col(name)) }

		gamePK, err := strconv.ParseInt(col("game_pk"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: game_pk: %w", ErrBadFeed, line, err)
		}
		atBat, err := strconv.Atoi(col("at_bat_number"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: at_bat_number: %w", ErrBadFeed, line, err)
		}
		pitchNo, err := strconv.Atoi(col("pitch_number"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: pitch_number: %w", ErrBadFeed, line, err)
		}

		out = append(out, model.PitchRecord{
			GamePK:           gamePK,
			AtBatNumber:      atBat,
			PitchNumber:      pitchNo,
			GameDate:         col("game_date"),
			PitcherID:        col("pitcher"),
			PlayerName:       col("player_name"),
			BatterStance:     model.Hand(col("stand")),
			PitcherThrow:     model.Hand(col("p_throws")),
			PitchName:        col("pitch_name"),
			GameType:         col("game_type"),
			Description:      col("description"),
			ReleaseSpeed:     num("release_speed"),
			PfxX:             num("pfx_x"),
			PfxZ:             num("pfx_z"),
			ReleasePosX:      num("release_pos_x"),
			ReleasePosZ:      num("release_pos_z"),
			ReleaseSpinRate:  num("release_spin_rate"),
			ReleaseExtension: num("release_extension"),
			PlateX:           num("plate_x"),
			PlateZ:           num("plate_z"),
			Balls:            num("balls"),
			Strikes:          num("strikes"),
			Zone:             num("zone"),
		})
	}
	return out, nil
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

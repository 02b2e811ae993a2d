package similarity

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/dataset"
)

// SearchHit is one row of a name search result.
type SearchHit struct {
	ID   int    `json:"player_id"`
	Name string `json:"player_name"`
}

// Radar is a percentile-style display profile: every value is the
// player's statistic min-max scaled into [0,1].
type Radar struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Neighbor is one ranked entry of a similar-players result.
type Neighbor struct {
	ID       int                    `json:"id"`
	Name     string                 `json:"name"`
	Position string                 `json:"position"`
	Squad    string                 `json:"squad"`
	League   string                 `json:"league"`
	Age      *float64               `json:"age"`
	Nation   string                 `json:"nation"`
	Score    float64                `json:"similarity_score"`
	KeyStats map[string]interface{} `json:"key_stats"`
	Radar    Radar                  `json:"radar"`
}

// Filters narrows the candidate set of a similar-players query before
// ranking. Every field is optional; malformed values are dropped
// per-field at parse time rather than failing the whole query.
type Filters struct {
	MinAge    *float64
	MaxAge    *float64
	Leagues   []string // lower-cased, matched as substrings of league or club
	Positions []string // lower-cased, first-token exact or substring
}

// ParseFilters builds Filters from raw query-string values, leniently:
// an unparseable age bound is ignored, list values are split on commas
// and lower-cased, empties dropped.
func ParseFilters(minAge, maxAge, leagues, positions string) Filters {
	var f Filters
	if v, err := strconv.ParseFloat(strings.TrimSpace(minAge), 64); err == nil {
		f.MinAge = &v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(maxAge), 64); err == nil {
		f.MaxAge = &v
	}
	f.Leagues = splitFilterList(leagues)
	f.Positions = splitFilterList(positions)
	return f
}

func splitFilterList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (f Filters) empty() bool {
	return f.MinAge == nil && f.MaxAge == nil && len(f.Leagues) == 0 && len(f.Positions) == 0
}

// matches applies the lenient per-field policy: a row passes unless a
// populated filter field explicitly excludes it.
func (f Filters) matches(r *dataset.Row) bool {
	if f.MinAge != nil || f.MaxAge != nil {
		age, ok := r.Age()
		if ok {
			if f.MinAge != nil && age < *f.MinAge {
				return false
			}
			if f.MaxAge != nil && age > *f.MaxAge {
				return false
			}
		}
	}
	if len(f.Leagues) > 0 {
		comp := strings.ToLower(r.Comp)
		squad := strings.ToLower(r.Squad)
		hit := false
		for _, l := range f.Leagues {
			if strings.Contains(comp, l) || strings.Contains(squad, l) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(f.Positions) > 0 {
		pos := strings.ToLower(r.Position)
		first := strings.TrimSpace(strings.SplitN(pos, ",", 2)[0])
		hit := false
		for _, p := range f.Positions {
			if p == first || strings.Contains(pos, p) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Engine owns the dataset snapshot and the derived similarity indices.
// Both are built lazily, exactly once per dataset version: concurrent
// first callers block on the mutex and then observe the completed
// build. After that every operation is a pure read.
type Engine struct {
	log        *logrus.Logger
	candidates []string

	mu       sync.Mutex
	ds       *dataset.Dataset
	idx      *Index
	buildErr error
}

// NewEngine creates an engine over the configured snapshot candidates.
// Nothing is loaded until the first query.
func NewEngine(candidates []string, log *logrus.Logger) *Engine {
	return &Engine{log: log, candidates: candidates}
}

// ensure performs the at-most-once lazy build. A load failure is cached
// and returned to every caller until Invalidate; it is not retried
// automatically.
func (e *Engine) ensure() (*dataset.Dataset, *Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ds != nil {
		return e.ds, e.idx, nil
	}
	if e.buildErr != nil {
		return nil, nil, e.buildErr
	}
	ds, err := dataset.Load(e.candidates, e.log)
	if err != nil {
		e.buildErr = err
		return nil, nil, err
	}
	e.ds = ds
	e.idx = buildIndex(ds, e.log)
	return e.ds, e.idx, nil
}

// Invalidate discards the snapshot and indices so the next query
// rebuilds from the current source file.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.ds, e.idx, e.buildErr = nil, nil, nil
	e.mu.Unlock()
	e.log.Info("Similarity engine invalidated, next query rebuilds")
}

// Ready reports whether the snapshot and indices are currently built,
// without triggering a build.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ds != nil
}

// Dataset exposes the loaded snapshot, building it if needed.
func (e *Engine) Dataset() (*dataset.Dataset, error) {
	ds, _, err := e.ensure()
	return ds, err
}

// SearchPlayers returns up to limit substring matches against the
// normalized player name, in dataset row order. An empty query returns
// an empty list rather than all rows.
func (e *Engine) SearchPlayers(query string, limit int) ([]SearchHit, error) {
	ds, _, err := e.ensure()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []SearchHit{}, nil
	}
	needle := dataset.NormalizeName(query)
	hits := []SearchHit{}
	for i := range ds.Rows {
		if limit > 0 && len(hits) >= limit {
			break
		}
		if strings.Contains(ds.Rows[i].NormalizedName, needle) {
			hits = append(hits, SearchHit{ID: ds.Rows[i].ID, Name: ds.Rows[i].Name})
		}
	}
	return hits, nil
}

// Resolve maps an identifier to a row: an integer identifier matches
// the stable row id exactly, anything else is tried as an exact
// normalized name and then as a substring, first hit winning.
func (e *Engine) Resolve(identifier string) (*dataset.Row, error) {
	ds, _, err := e.ensure()
	if err != nil {
		return nil, err
	}
	return resolveIn(ds, identifier)
}

func resolveIn(ds *dataset.Dataset, identifier string) (*dataset.Row, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(identifier)); err == nil {
		if row, ok := ds.ByID(id); ok {
			return row, nil
		}
		return nil, ErrNotFound
	}
	needle := dataset.NormalizeName(identifier)
	for i := range ds.Rows {
		if ds.Rows[i].NormalizedName == needle {
			return &ds.Rows[i], nil
		}
	}
	for i := range ds.Rows {
		if strings.Contains(ds.Rows[i].NormalizedName, needle) {
			return &ds.Rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// Record resolves an identifier and returns the sanitized canonical
// key/value form of the player row.
func (e *Engine) Record(identifier string) (map[string]interface{}, error) {
	ds, _, err := e.ensure()
	if err != nil {
		return nil, err
	}
	row, err := resolveIn(ds, identifier)
	if err != nil {
		return nil, err
	}
	rec := Sanitize(ds.Record(row))
	return rec.(map[string]interface{}), nil
}

// SimilarPlayers ranks the subject's position-group peers by
// precomputed cosine similarity, descending, after narrowing the
// candidate set with the filters. Rows outside the subject's group
// carry no entry in the group index, so cross-group neighbors are
// structurally impossible. Ties keep dataset row order and the subject
// itself is never a neighbor.
func (e *Engine) SimilarPlayers(identifier string, k int, f Filters) ([]Neighbor, error) {
	ds, idx, err := e.ensure()
	if err != nil {
		return nil, err
	}
	subject, err := resolveIn(ds, identifier)
	if err != nil {
		return nil, err
	}

	gi := idx.group(subject.Group)
	if gi == nil || gi.memberCount() <= 1 {
		return []Neighbor{}, nil
	}
	if _, ok := gi.local[subject.ID]; !ok {
		return []Neighbor{}, nil
	}

	type scored struct {
		row   *dataset.Row
		score float64
	}
	var candidates []scored
	for i := range ds.Rows {
		row := &ds.Rows[i]
		if row.ID == subject.ID {
			continue
		}
		if _, inGroup := gi.local[row.ID]; !inGroup {
			continue
		}
		if !f.empty() && !f.matches(row) {
			continue
		}
		score, ok := gi.similarityBetween(subject.ID, row.ID)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{row: row, score: score})
	}
	if len(candidates) == 0 {
		return []Neighbor{}, nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]Neighbor, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Neighbor{
			ID:       c.row.ID,
			Name:     c.row.Name,
			Position: c.row.Position,
			Squad:    c.row.Squad,
			League:   c.row.Comp,
			Age:      agePtr(c.row),
			Nation:   c.row.Nation,
			Score:    c.score,
			KeyStats: keyStats(ds, c.row),
			Radar:    buildRadar(ds, gi, c.row),
		})
	}
	return results, nil
}

// Radar resolves an identifier and computes its display profile.
func (e *Engine) Radar(identifier string) (Radar, error) {
	ds, idx, err := e.ensure()
	if err != nil {
		return Radar{}, err
	}
	row, err := resolveIn(ds, identifier)
	if err != nil {
		return Radar{}, err
	}
	return buildRadar(ds, idx.group(row.Group), row), nil
}

// Meta returns the sorted distinct leagues and the sorted distinct
// position tokens present in the dataset, for filter dropdowns.
func (e *Engine) Meta() (leagues, positions []string, err error) {
	ds, _, err := e.ensure()
	if err != nil {
		return nil, nil, err
	}
	leagueSet := map[string]struct{}{}
	posSet := map[string]struct{}{}
	for i := range ds.Rows {
		if ds.Rows[i].Comp != "" {
			leagueSet[ds.Rows[i].Comp] = struct{}{}
		}
		for _, tok := range strings.Split(ds.Rows[i].Position, ",") {
			if t := strings.TrimSpace(tok); t != "" {
				posSet[t] = struct{}{}
			}
		}
	}
	for l := range leagueSet {
		leagues = append(leagues, l)
	}
	for p := range posSet {
		positions = append(positions, p)
	}
	sort.Strings(leagues)
	sort.Strings(positions)
	return leagues, positions, nil
}

func agePtr(r *dataset.Row) *float64 {
	if age, ok := r.Age(); ok {
		return &age
	}
	return nil
}

// keyStats collects the radar category values for a result row. Absent
// measurements stay null on the wire instead of a fabricated zero.
func keyStats(ds *dataset.Dataset, r *dataset.Row) map[string]interface{} {
	out := make(map[string]interface{})
	for _, c := range dataset.RadarCategories {
		if !ds.HasColumn(c) {
			continue
		}
		if v, present := r.Stat(c); present {
			out[c] = v
		} else {
			out[c] = nil
		}
	}
	return out
}

// buildRadar normalizes each radar category into [0,1]. Categories
// modeled for the player's own group reuse that group's min-max
// parameters, consistent with the similarity scaling; anything else
// falls back to the dataset-global extrema.
func buildRadar(ds *dataset.Dataset, gi *groupIndex, r *dataset.Row) Radar {
	radar := Radar{Labels: []string{}, Values: []float64{}}
	for _, label := range dataset.RadarCategories {
		if !ds.HasColumn(label) {
			continue
		}
		raw := r.StatOrZero(label)

		var scaled float64
		if gi != nil {
			if v, ok := gi.scaledValue(label, raw); ok {
				scaled = v
			} else {
				scaled = globalScaled(ds, label, raw)
			}
		} else {
			scaled = globalScaled(ds, label, raw)
		}

		scaled = math.Max(0, math.Min(1, scaled))
		radar.Labels = append(radar.Labels, label)
		radar.Values = append(radar.Values, math.Round(scaled*10000)/10000)
	}
	return radar
}

func globalScaled(ds *dataset.Dataset, col string, raw float64) float64 {
	lo, hi, ok := ds.GlobalMinMax(col)
	if !ok || hi == lo {
		return 0
	}
	return (raw - lo) / (hi - lo)
}

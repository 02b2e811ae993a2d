// Package valuation serves the market-value analysis snapshot: the
// undervalued-players ranking with filtering, sorting and pagination,
// plus the distinct filter options the UI offers.
package valuation

import (
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/dataset"
	"github.com/scoutx/analytics-service/internal/similarity"
)

// Wildcard matches every value of a filter dimension.
const Wildcard = "ALL"

// Query describes one page request over the predictions snapshot.
type Query struct {
	Position string
	League   string
	Squad    string

	MinAge            *float64
	MaxAge            *float64
	MinValue          *float64
	MaxValue          *float64
	MinUndervaluation *float64

	SortColumn    string
	SortDirection string

	Page         int
	ItemsPerPage int
}

// Page is one page of ranked players plus the pre-pagination total.
type Page struct {
	Items      []map[string]interface{} `json:"data"`
	TotalItems int                      `json:"total_items"`
}

// sortColumns maps the client-facing sort keys onto snapshot columns.
// Unknown keys fall back to the undervaluation score.
var sortColumns = map[string]string{
	"rank":            "Undervaluation",
	"player":          "Player",
	"position":        "Main_Pos",
	"squad":           "Squad",
	"league":          "Comp",
	"age":             "Age",
	"market_value":    "Market_Value_Million_EUR",
	"predicted_value": "Predicted_Value",
	"undervaluation":  "Undervaluation",
}

var numericSortColumns = map[string]bool{
	"Age":                      true,
	"Market_Value_Million_EUR": true,
	"Predicted_Value":          true,
	"Undervaluation":           true,
}

// Store owns the predictions snapshot, loaded lazily once and shared
// read-only afterwards, same lifecycle as the similarity engine.
type Store struct {
	log        *logrus.Logger
	candidates []string

	mu      sync.Mutex
	ds      *dataset.Dataset
	loadErr error
}

// NewStore creates a store over the configured predictions candidates.
func NewStore(candidates []string, log *logrus.Logger) *Store {
	return &Store{log: log, candidates: candidates}
}

func (s *Store) ensure() (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds != nil {
		return s.ds, nil
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	ds, err := dataset.Load(s.candidates, s.log)
	if err != nil {
		s.loadErr = err
		return nil, err
	}
	s.ds = ds
	return ds, nil
}

// Dataset exposes the loaded predictions snapshot, loading it if
// needed. The chatbot retrieval step reads it directly.
func (s *Store) Dataset() (*dataset.Dataset, error) {
	return s.ensure()
}

// Invalidate discards the snapshot so the next query reloads it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.ds, s.loadErr = nil, nil
	s.mu.Unlock()
}

// FilterOptions returns the distinct leagues and squads in order of
// first appearance.
func (s *Store) FilterOptions() (leagues, squads []string, err error) {
	ds, err := s.ensure()
	if err != nil {
		return nil, nil, err
	}
	seenLeague := map[string]struct{}{}
	seenSquad := map[string]struct{}{}
	for i := range ds.Rows {
		if l := ds.Rows[i].Comp; l != "" {
			if _, ok := seenLeague[l]; !ok {
				seenLeague[l] = struct{}{}
				leagues = append(leagues, l)
			}
		}
		if sq := ds.Rows[i].Squad; sq != "" {
			if _, ok := seenSquad[sq]; !ok {
				seenSquad[sq] = struct{}{}
				squads = append(squads, sq)
			}
		}
	}
	return leagues, squads, nil
}

// Undervalued filters, sorts and paginates the predictions snapshot.
// Every filter field is optional; rows lacking a bounded value are
// excluded by that bound, matching the snapshot's numeric coercion.
func (s *Store) Undervalued(q Query) (Page, error) {
	ds, err := s.ensure()
	if err != nil {
		return Page{}, err
	}

	var rows []*dataset.Row
	for i := range ds.Rows {
		row := &ds.Rows[i]
		if !s.matches(row, q) {
			continue
		}
		rows = append(rows, row)
	}

	sortCol := sortColumns[strings.ToLower(strings.TrimSpace(q.SortColumn))]
	if sortCol == "" {
		sortCol = "Undervaluation"
	}
	ascending := strings.EqualFold(q.SortDirection, "asc")
	sortRows(rows, sortCol, ascending)

	total := len(rows)
	page := q.Page
	if page < 1 {
		page = 1
	}
	per := q.ItemsPerPage
	if per < 1 {
		per = 25
	}
	start := (page - 1) * per
	if start > total {
		start = total
	}
	end := start + per
	if end > total {
		end = total
	}

	items := make([]map[string]interface{}, 0, end-start)
	for _, row := range rows[start:end] {
		rec := similarity.Sanitize(ds.Record(row))
		items = append(items, rec.(map[string]interface{}))
	}
	return Page{Items: items, TotalItems: total}, nil
}

func (s *Store) matches(row *dataset.Row, q Query) bool {
	if q.Position != "" && q.Position != Wildcard {
		if modelPos(row) != q.Position {
			return false
		}
	}
	if q.League != "" && q.League != Wildcard && row.Comp != q.League {
		return false
	}
	if q.Squad != "" && q.Squad != Wildcard && row.Squad != q.Squad {
		return false
	}

	if q.MinAge != nil || q.MaxAge != nil {
		age, ok := row.Age()
		if !ok {
			return false
		}
		if q.MinAge != nil && age < *q.MinAge {
			return false
		}
		if q.MaxAge != nil && age > *q.MaxAge {
			return false
		}
	}
	if q.MinValue != nil || q.MaxValue != nil {
		v, ok := row.Stat("Market_Value_Million_EUR")
		if !ok {
			return false
		}
		if q.MinValue != nil && v < *q.MinValue {
			return false
		}
		if q.MaxValue != nil && v > *q.MaxValue {
			return false
		}
	}
	if q.MinUndervaluation != nil {
		v, ok := row.Stat("Undervaluation")
		if !ok || v < *q.MinUndervaluation {
			return false
		}
	}
	return true
}

// modelPos reads the modeling position label, falling back through the
// two snapshot variants to the raw position string.
func modelPos(row *dataset.Row) string {
	if v, ok := row.Extra["Model_Pos"]; ok {
		return v
	}
	if v, ok := row.Extra["Main_Pos"]; ok {
		return v
	}
	return strings.TrimSpace(strings.SplitN(row.Position, ",", 2)[0])
}

// sortRows orders rows by a snapshot column, numeric-aware and stable.
// Rows missing a numeric sort value always sort last.
func sortRows(rows []*dataset.Row, col string, ascending bool) {
	if numericSortColumns[col] {
		sort.SliceStable(rows, func(a, b int) bool {
			av, aok := rows[a].Stat(col)
			bv, bok := rows[b].Stat(col)
			if aok != bok {
				return aok
			}
			if !aok {
				return false
			}
			if ascending {
				return av < bv
			}
			return av > bv
		})
		return
	}
	key := func(r *dataset.Row) string {
		switch col {
		case "Player":
			return r.Name
		case "Squad":
			return r.Squad
		case "Comp":
			return r.Comp
		default:
			if v, ok := r.Extra[col]; ok {
				return v
			}
			return ""
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if ascending {
			return key(rows[a]) < key(rows[b])
		}
		return key(rows[a]) > key(rows[b])
	})
}

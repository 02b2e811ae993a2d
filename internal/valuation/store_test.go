package valuation

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutx/analytics-service/internal/dataset"
)

// Franz carries no age, predicted value or undervaluation score, which
// exercises the absent-last sort rule and bounded-filter exclusion.
const predictionsCSV = `Player,Main_Pos,Squad,Comp,Nation,Age,Market_Value_Million_EUR,Predicted_Value,Undervaluation
Aaron One,FW,Arsenal,Premier League,ENG,24,50,80,30
Bruno Two,MF,Barcelona,La Liga,POR,27,60,55,-5
Carlos Three,FW,Arsenal,Premier League,ESP,21,20,45,25
Dario Four,DF,Juventus,Serie A,ITA,30,30,30,0
Emil Five,GK,Ajax,Eredivisie,NED,25,10,22,12
Franz Six,MF,Bayern,Bundesliga,GER,,40,,
`

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte(predictionsCSV), 0o644))
	return NewStore([]string{path}, testLogger())
}

func names(p Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, item["Player"].(string))
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestUndervalued_DefaultSortDescending(t *testing.T) {
	s := newTestStore(t)
	page, err := s.Undervalued(Query{})
	require.NoError(t, err)
	assert.Equal(t, 6, page.TotalItems)
	assert.Equal(t,
		[]string{"Aaron One", "Carlos Three", "Emil Five", "Dario Four", "Bruno Two", "Franz Six"},
		names(page))
}

func TestUndervalued_Pagination(t *testing.T) {
	s := newTestStore(t)

	page, err := s.Undervalued(Query{Page: 2, ItemsPerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, page.TotalItems)
	assert.Equal(t, []string{"Emil Five", "Dario Four"}, names(page))

	beyond, err := s.Undervalued(Query{Page: 9, ItemsPerPage: 25})
	require.NoError(t, err)
	assert.Equal(t, 6, beyond.TotalItems)
	assert.Empty(t, beyond.Items)
}

func TestUndervalued_PositionFilter(t *testing.T) {
	s := newTestStore(t)

	page, err := s.Undervalued(Query{Position: "FW"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aaron One", "Carlos Three"}, names(page))

	all, err := s.Undervalued(Query{Position: Wildcard})
	require.NoError(t, err)
	assert.Equal(t, 6, all.TotalItems)
}

func TestUndervalued_LeagueAndSquadFilters(t *testing.T) {
	s := newTestStore(t)

	page, err := s.Undervalued(Query{League: "Premier League"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	page, err = s.Undervalued(Query{Squad: "Ajax"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Emil Five"}, names(page))
}

func TestUndervalued_BoundedFilters(t *testing.T) {
	s := newTestStore(t)

	// an age bound excludes the row with no age at all
	byAge, err := s.Undervalued(Query{MinAge: floatPtr(25)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bruno Two", "Dario Four", "Emil Five"}, names(byAge))

	byValue, err := s.Undervalued(Query{MinValue: floatPtr(40)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Aaron One", "Bruno Two", "Franz Six"}, names(byValue))

	byScore, err := s.Undervalued(Query{MinUndervaluation: floatPtr(10)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Aaron One", "Carlos Three", "Emil Five"}, names(byScore))
}

func TestUndervalued_SortVariants(t *testing.T) {
	s := newTestStore(t)

	byName, err := s.Undervalued(Query{SortColumn: "player", SortDirection: "asc"})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Aaron One", "Bruno Two", "Carlos Three", "Dario Four", "Emil Five", "Franz Six"},
		names(byName))

	byAge, err := s.Undervalued(Query{SortColumn: "age", SortDirection: "asc"})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Carlos Three", "Aaron One", "Emil Five", "Bruno Two", "Dario Four", "Franz Six"},
		names(byAge), "rows missing the sort value go last even ascending")

	fallback, err := s.Undervalued(Query{SortColumn: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, names(fallback)[0], "Aaron One")
}

func TestFilterOptions_FirstAppearanceOrder(t *testing.T) {
	s := newTestStore(t)

	leagues, squads, err := s.FilterOptions()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Premier League", "La Liga", "Serie A", "Eredivisie", "Bundesliga"},
		leagues)
	assert.Equal(t,
		[]string{"Arsenal", "Barcelona", "Juventus", "Ajax", "Bayern"},
		squads)
}

func TestStore_LoadFailure(t *testing.T) {
	s := NewStore([]string{filepath.Join(t.TempDir(), "missing.csv")}, testLogger())
	_, err := s.Undervalued(Query{})
	require.ErrorIs(t, err, dataset.ErrDataUnavailable)

	_, _, err = s.FilterOptions()
	require.ErrorIs(t, err, dataset.ErrDataUnavailable)
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrDataUnavailable is returned when no configured snapshot candidate
// exists or parses. It is fatal to the analytics capability until an
// operator fixes the source and triggers a rebuild.
var ErrDataUnavailable = errors.New("no readable dataset snapshot")

// reserved columns handled as typed fields rather than statistics
const (
	colRank     = "Rk"
	colPlayer   = "Player"
	colPosition = "Pos"
	colSquad    = "Squad"
	colComp     = "Comp"
	colNation   = "Nation"
)

// Stat is a single numeric cell. Present distinguishes a measured zero
// from a missing measurement; modeling treats both as zero, the API
// layer reports absent stats as null.
type Stat struct {
	Value   float64
	Present bool
}

// Row is one player record from the snapshot.
type Row struct {
	ID             int
	Name           string
	NormalizedName string
	Position       string
	Group          PositionGroup
	Squad          string
	Comp           string
	Nation         string
	Stats          map[string]Stat
	Extra          map[string]string
}

// Stat returns the numeric value of a statistic and whether it was
// actually present in the source.
func (r *Row) Stat(col string) (float64, bool) {
	s, ok := r.Stats[col]
	if !ok {
		return 0, false
	}
	return s.Value, s.Present
}

// StatOrZero returns the numeric value with missing cells coerced to
// zero, the neutral value used by the similarity model.
func (r *Row) StatOrZero(col string) float64 {
	v, _ := r.Stat(col)
	return v
}

// Age returns the player's age when present.
func (r *Row) Age() (float64, bool) {
	return r.Stat("Age")
}

// Dataset is the immutable in-memory snapshot: all rows in source
// order, the canonical column set, and per-column global extrema.
type Dataset struct {
	Rows    []Row
	Columns []string

	byID       map[int]int
	numericCol map[string]bool
	globalMin  map[string]float64
	globalMax  map[string]float64
}

// Load reads the first existing, parseable candidate path. Candidates
// are tried in priority order; only when every candidate fails does it
// report ErrDataUnavailable.
func Load(candidates []string, log *logrus.Logger) (*Dataset, error) {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ds, err := LoadFile(path)
		if err != nil {
			log.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("Skipping unparseable dataset candidate")
			continue
		}
		log.WithFields(logrus.Fields{
			"path":    path,
			"rows":    len(ds.Rows),
			"columns": len(ds.Columns),
		}).Info("Loaded dataset snapshot")
		return ds, nil
	}
	return nil, fmt.Errorf("%w: tried %s", ErrDataUnavailable, strings.Join(candidates, ", "))
}

// LoadFile parses a single CSV snapshot.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads CSV rows, renames source columns to the canonical
// vocabulary, derives normalized names and position groups, and assigns
// stable row ids.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	// Rename source column names to canonical ones; unknown columns
	// pass through unchanged.
	sourceToCanonical := make(map[string]string, len(columnMapping))
	for canonical, source := range columnMapping {
		sourceToCanonical[source] = canonical
	}
	columns := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if canonical, ok := sourceToCanonical[name]; ok {
			name = canonical
		}
		columns[i] = name
	}

	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := colIdx[c]; !dup {
			colIdx[c] = i
		}
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		records = append(records, rec)
	}

	ds := &Dataset{
		Columns:    columns,
		byID:       make(map[int]int, len(records)),
		numericCol: make(map[string]bool),
		globalMin:  make(map[string]float64),
		globalMax:  make(map[string]float64),
	}

	rankIdx, hasRank := colIdx[colRank]
	usedID := make(map[int]bool, len(records))
	nextID := len(records)
	for i, rec := range records {
		cell := func(col string) string {
			idx, ok := colIdx[col]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		row := Row{
			Name:     cell(colPlayer),
			Position: cell(colPosition),
			Squad:    cell(colSquad),
			Comp:     cell(colComp),
			Nation:   cell(colNation),
			Stats:    make(map[string]Stat),
			Extra:    make(map[string]string),
		}
		row.NormalizedName = NormalizeName(row.Name)
		row.Group = MapPositionGroup(row.Position)

		// Existing rank column wins when integer-coercible; a value
		// that is not gets -1, matching the snapshot exporter. IDs
		// must stay unique, so repeats fall back to the next free
		// dense index.
		if hasRank {
			raw := ""
			if rankIdx < len(rec) {
				raw = strings.TrimSpace(rec[rankIdx])
			}
			if id, err := strconv.Atoi(raw); err == nil {
				row.ID = id
			} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
				row.ID = int(f)
			} else {
				row.ID = -1
			}
		} else {
			row.ID = i
		}
		if usedID[row.ID] {
			for usedID[nextID] {
				nextID++
			}
			row.ID = nextID
		}
		usedID[row.ID] = true

		for j, c := range columns {
			if c == colRank || c == colPlayer || c == colPosition ||
				c == colSquad || c == colComp || c == colNation {
				continue
			}
			if j >= len(rec) {
				continue
			}
			raw := strings.TrimSpace(rec[j])
			if raw == "" {
				row.Stats[c] = Stat{}
				continue
			}
			if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
				// literal NaN/Inf tokens count as missing measurements
				if math.IsNaN(v) || math.IsInf(v, 0) {
					row.Stats[c] = Stat{}
					continue
				}
				row.Stats[c] = Stat{Value: v, Present: true}
				ds.numericCol[c] = true
			} else {
				row.Extra[c] = raw
			}
		}

		ds.Rows = append(ds.Rows, row)
	}

	for i := range ds.Rows {
		ds.byID[ds.Rows[i].ID] = i
	}
	ds.computeGlobalExtrema()

	return ds, nil
}

func (d *Dataset) computeGlobalExtrema() {
	for col := range d.numericCol {
		first := true
		var lo, hi float64
		for i := range d.Rows {
			v := d.Rows[i].StatOrZero(col)
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		d.globalMin[col] = lo
		d.globalMax[col] = hi
	}
}

// ByID returns the row with the given stable id.
func (d *Dataset) ByID(id int) (*Row, bool) {
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &d.Rows[i], true
}

// HasColumn reports whether a numeric statistic column exists in the
// loaded snapshot.
func (d *Dataset) HasColumn(col string) bool {
	return d.numericCol[col]
}

// GlobalMinMax returns the dataset-wide extrema for a numeric column,
// with missing cells counted as zero.
func (d *Dataset) GlobalMinMax(col string) (float64, float64, bool) {
	if !d.numericCol[col] {
		return 0, 0, false
	}
	return d.globalMin[col], d.globalMax[col], true
}

// Record flattens a row into the canonical key/value form used by the
// API. Absent measurements come through as nil so JSON renders null,
// never a fabricated zero.
func (d *Dataset) Record(r *Row) map[string]interface{} {
	out := map[string]interface{}{
		colRank:     r.ID,
		colPlayer:   r.Name,
		colPosition: r.Position,
		colSquad:    r.Squad,
		colComp:     r.Comp,
		colNation:   r.Nation,

		"PositionGroup": string(r.Group),
	}
	for col, s := range r.Stats {
		if s.Present {
			out[col] = s.Value
		} else {
			out[col] = nil
		}
	}
	for col, raw := range r.Extra {
		out[col] = raw
	}
	return out
}

package similarity

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/scoutx/analytics-service/internal/dataset"
)

// groupIndex holds everything precomputed for one position group: the
// member rows, the group-local scaling parameters, the scaled feature
// matrix and the dense pairwise cosine-similarity matrix over it.
type groupIndex struct {
	features []string
	rowIDs   []int
	local    map[int]int // global row id -> group-relative index

	min, max []float64 // per feature, group-local

	scaled *mat.Dense // members x features
	sim    *mat.Dense // members x members
}

func (g *groupIndex) memberCount() int {
	return len(g.rowIDs)
}

// similarityBetween returns the precomputed score between two group
// members identified by their global row ids.
func (g *groupIndex) similarityBetween(a, b int) (float64, bool) {
	if g.sim == nil {
		return 0, false
	}
	i, ok := g.local[a]
	if !ok {
		return 0, false
	}
	j, ok := g.local[b]
	if !ok {
		return 0, false
	}
	return g.sim.At(i, j), true
}

// scaledValue min-max scales a raw value using the group-local
// parameters for a feature, clamped implicitly by a degenerate range
// collapsing to zero.
func (g *groupIndex) scaledValue(feature string, raw float64) (float64, bool) {
	for i, f := range g.features {
		if f != feature {
			continue
		}
		if g.max[i] == g.min[i] {
			return 0, true
		}
		return (raw - g.min[i]) / (g.max[i] - g.min[i]), true
	}
	return 0, false
}

// Index is the full set of per-group similarity structures derived
// from one dataset snapshot. It is immutable once built.
type Index struct {
	groups map[dataset.PositionGroup]*groupIndex
}

func (x *Index) group(g dataset.PositionGroup) *groupIndex {
	return x.groups[g]
}

// buildIndex constructs every position group's scaled matrix and
// similarity matrix. A malformed feature column never fails the build;
// it degrades that column to constant zero. Groups with no usable
// features or no members get empty, query-safe indices.
func buildIndex(ds *dataset.Dataset, log *logrus.Logger) *Index {
	started := time.Now()
	idx := &Index{groups: make(map[dataset.PositionGroup]*groupIndex, len(dataset.PositionGroups))}

	for _, group := range dataset.PositionGroups {
		var features []string
		for _, f := range dataset.FeaturesByGroup[group] {
			if ds.HasColumn(f) {
				features = append(features, f)
			}
		}

		gi := &groupIndex{features: features, local: make(map[int]int)}
		idx.groups[group] = gi
		if len(features) == 0 {
			log.WithField("position_group", string(group)).Warn("No catalog features present in dataset, group index empty")
			continue
		}

		for i := range ds.Rows {
			if ds.Rows[i].Group != group {
				continue
			}
			gi.local[ds.Rows[i].ID] = len(gi.rowIDs)
			gi.rowIDs = append(gi.rowIDs, ds.Rows[i].ID)
		}
		n := len(gi.rowIDs)
		if n == 0 {
			continue
		}

		raw := mat.NewDense(n, len(features), nil)
		for i, id := range gi.rowIDs {
			row, _ := ds.ByID(id)
			for j, f := range features {
				v := row.StatOrZero(f)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					v = 0
				}
				raw.Set(i, j, v)
			}
		}

		gi.min = make([]float64, len(features))
		gi.max = make([]float64, len(features))
		for j := range features {
			col := mat.Col(nil, j, raw)
			gi.min[j] = floats.Min(col)
			gi.max[j] = floats.Max(col)
		}

		gi.scaled = mat.NewDense(n, len(features), nil)
		for i := 0; i < n; i++ {
			for j := range features {
				if gi.max[j] == gi.min[j] {
					gi.scaled.Set(i, j, 0)
					continue
				}
				gi.scaled.Set(i, j, (raw.At(i, j)-gi.min[j])/(gi.max[j]-gi.min[j]))
			}
		}

		// Cosine similarity as one dense multiplication: normalize each
		// row to unit length, then S = N * N^T. All-zero rows stay zero
		// so their similarity to everything is zero. A single-member
		// group keeps a 1x1 zero matrix: self-similarity carries no
		// meaning and the diagonal is never surfaced anyway.
		if n > 1 {
			normalized := mat.NewDense(n, len(features), nil)
			for i := 0; i < n; i++ {
				v := gi.scaled.RawRowView(i)
				var norm float64
				for _, x := range v {
					norm += x * x
				}
				norm = math.Sqrt(norm)
				if norm == 0 {
					continue
				}
				for j, x := range v {
					normalized.Set(i, j, x/norm)
				}
			}
			gi.sim = mat.NewDense(n, n, nil)
			gi.sim.Mul(normalized, normalized.T())
		} else {
			gi.sim = mat.NewDense(1, 1, nil)
		}

		log.WithFields(logrus.Fields{
			"position_group": string(group),
			"members":        n,
			"features":       len(features),
		}).Debug("Built position group similarity index")
	}

	indexBuilds.Inc()
	indexBuildSeconds.Observe(time.Since(started).Seconds())
	log.WithField("elapsed", time.Since(started).String()).Info("Similarity index build complete")
	return idx
}

package cluster

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/model/config"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// Clusterer groups candidates into milestone clusters by hierarchical
// agglomerative clustering with average linkage over Euclidean distance
type Clusterer struct {
	threshold float64
}

// Option is a functional option for Clusterer
type Option func(*Clusterer)

// WithThreshold sets the distance above which clusters are no longer merged
func WithThreshold(threshold float64) Option {
	return func(c *Clusterer) {
		c.threshold = threshold
	}
}

// New creates a Clusterer with the default threshold
func New(opts ...Option) *Clusterer {
	c := &Clusterer{
		threshold: config.DefaultDistanceThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured merge threshold
func (c *Clusterer) Threshold() float64 {
	return c.threshold
}

// Cluster partitions candidates. Clusters are merged while the smallest
// average-linkage distance between any two clusters is at most the
// threshold. Ties are broken by the lowest pair of cluster positions, so the
// result depends only on the input order and embeddings.
//
// Clusters are returned in discovery order (by their earliest member) and
// members keep input order.
func (c *Clusterer) Cluster(ctx context.Context, candidates []*model.Candidate) ([]*model.Cluster, error) {
	if len(candidates) == 0 {
		return []*model.Cluster{}, nil
	}
	if err := validate(candidates); err != nil {
		return nil, err
	}

	n := len(candidates)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Euclidean(candidates[i].Embedding, candidates[j].Embedding)
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	// groups[i] is nil once merged into a lower position. A surviving
	// position is always the smallest member index of its group, so position
	// order is discovery order.
	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	merges := 0
	for {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if groups[i] == nil {
				continue
			}
			for j := i + 1; j < n; j++ {
				if groups[j] == nil {
					continue
				}
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}
		if bi < 0 || best > c.threshold {
			break
		}

		// Lance-Williams update for average linkage
		ni, nj := float64(len(groups[bi])), float64(len(groups[bj]))
		for k := 0; k < n; k++ {
			if groups[k] == nil || k == bi || k == bj {
				continue
			}
			d := (ni*dist[bi][k] + nj*dist[bj][k]) / (ni + nj)
			dist[bi][k] = d
			dist[k][bi] = d
		}
		groups[bi] = append(groups[bi], groups[bj]...)
		groups[bj] = nil
		merges++
	}

	var clusters []*model.Cluster
	for _, g := range groups {
		if g == nil {
			continue
		}
		sort.Ints(g)
		members := make([]*model.Candidate, len(g))
		for i, idx := range g {
			members[i] = candidates[idx]
		}
		clusters = append(clusters, &model.Cluster{Members: members})
	}

	for i, cl := range clusters {
		cl.Index = i
	}

	logging.From(ctx).Debug("clustered candidates",
		"candidates", n,
		"clusters", len(clusters),
		"merges", merges,
		"threshold", c.threshold,
	)

	return clusters, nil
}

func validate(candidates []*model.Candidate) error {
	var dim int
	for i, c := range candidates {
		if c == nil {
			return goerr.Wrap(model.ErrInvalidInput, "nil candidate", goerr.V("index", i))
		}
		if len(c.Embedding) == 0 {
			return goerr.Wrap(model.ErrInvalidInput, "candidate has no embedding",
				goerr.V("index", i), goerr.V("text", c.Text))
		}
		if i == 0 {
			dim = len(c.Embedding)
			continue
		}
		if len(c.Embedding) != dim {
			return goerr.Wrap(model.ErrInvalidInput, "embedding dimension mismatch",
				goerr.V("index", i),
				goerr.V("expected", dim),
				goerr.V("actual", len(c.Embedding)))
		}
	}
	return nil
}

// Euclidean returns the L2 distance between two vectors of equal length
func Euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

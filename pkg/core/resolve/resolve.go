package resolve

import (
	"sort"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/model/config"
)

// Signal is one weighted piece of date evidence expressed as a day ordinal
type Signal struct {
	Ordinal int
	Weight  float64
}

// Resolver computes the canonical date of a cluster
type Resolver struct {
	mentionWeight float64
	publishWeight float64
}

// Option is a functional option for Resolver
type Option func(*Resolver)

// WithWeights sets the weights of an in-text date mention and of the
// article publish date
func WithWeights(mention, publish float64) Option {
	return func(r *Resolver) {
		r.mentionWeight = mention
		r.publishWeight = publish
	}
}

// New creates a Resolver with the default weights
func New(opts ...Option) *Resolver {
	r := &Resolver{
		mentionWeight: config.DefaultMentionWeight,
		publishWeight: config.DefaultPublishWeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Signals gathers the date evidence of every member in member order. A member
// contributes its mentioned date and its publish date, each when present.
func (r *Resolver) Signals(cluster *model.Cluster) []Signal {
	var signals []Signal
	for _, m := range cluster.Members {
		if m.MentionedDate != nil {
			signals = append(signals, Signal{Ordinal: m.MentionedDate.Ordinal(), Weight: r.mentionWeight})
		}
		if m.SourcePublishedAt != nil && !m.SourcePublishedAt.IsZero() {
			published := model.DateOf(m.SourcePublishedAt.UTC())
			signals = append(signals, Signal{Ordinal: published.Ordinal(), Weight: r.publishWeight})
		}
	}
	return signals
}

// Resolve returns the weighted median date of the cluster, or nil when no
// member carries any date signal
func (r *Resolver) Resolve(cluster *model.Cluster) *model.Date {
	if cluster == nil {
		return nil
	}
	ordinal, ok := WeightedMedian(r.Signals(cluster))
	if !ok {
		return nil
	}
	return model.DateFromOrdinal(ordinal).Ptr()
}

// WeightedMedian returns the ordinal at which the cumulative weight, scanning
// ordinals in ascending order, first reaches half of the total weight. If the
// scan never gets there the ordinal at the middle index of the input order is
// returned. ok is false for empty input.
func WeightedMedian(signals []Signal) (int, bool) {
	if len(signals) == 0 {
		return 0, false
	}

	sorted := make([]Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	var total float64
	for _, s := range sorted {
		total += s.Weight
	}

	half := total / 2
	var cumulative float64
	for _, s := range sorted {
		cumulative += s.Weight
		if cumulative >= half {
			return s.Ordinal, true
		}
	}

	return signals[len(signals)/2].Ordinal, true
}

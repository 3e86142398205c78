package cluster_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/core/cluster"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

func candidate(text string, emb ...float32) *model.Candidate {
	return &model.Candidate{Text: text, Embedding: emb}
}

func texts(cl *model.Cluster) []string {
	var out []string
	for _, m := range cl.Members {
		out = append(out, m.Text)
	}
	return out
}

func TestClusterEmpty(t *testing.T) {
	clusters, err := cluster.New().Cluster(context.Background(), nil)
	gt.NoError(t, err).Required()
	gt.Array(t, clusters).Length(0)
}

func TestClusterThreshold(t *testing.T) {
	ctx := context.Background()

	t.Run("near-identical embeddings merge", func(t *testing.T) {
		clusters, err := cluster.New().Cluster(ctx, []*model.Candidate{
			candidate("a", 0, 0),
			candidate("b", 0.1, 0),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, clusters).Length(1).Required()
		gt.Value(t, texts(clusters[0])).Equal([]string{"a", "b"})
	})

	t.Run("distant embeddings stay apart", func(t *testing.T) {
		clusters, err := cluster.New().Cluster(ctx, []*model.Candidate{
			candidate("a", 0, 0),
			candidate("b", 5, 0),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, clusters).Length(2)
	})

	t.Run("distance equal to threshold merges", func(t *testing.T) {
		clusters, err := cluster.New(cluster.WithThreshold(1)).Cluster(ctx, []*model.Candidate{
			candidate("a", 0),
			candidate("b", 1),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, clusters).Length(1)
	})

	t.Run("threshold is tunable", func(t *testing.T) {
		input := []*model.Candidate{
			candidate("a", 0),
			candidate("b", 2),
		}
		clusters, err := cluster.New().Cluster(ctx, input)
		gt.NoError(t, err).Required()
		gt.Array(t, clusters).Length(2)

		clusters, err = cluster.New(cluster.WithThreshold(3)).Cluster(ctx, input)
		gt.NoError(t, err).Required()
		gt.Array(t, clusters).Length(1)
	})
}

func TestClusterAverageLinkage(t *testing.T) {
	// a-b merge first (0.5). Then c sits 1.0 from b but 1.5 from a, so the
	// average distance to {a,b} is 1.25, above the threshold. Single linkage
	// would have chained c into the cluster.
	clusters, err := cluster.New().Cluster(context.Background(), []*model.Candidate{
		candidate("a", 0),
		candidate("b", 0.5),
		candidate("c", 1.5),
	})
	gt.NoError(t, err).Required()
	gt.Array(t, clusters).Length(2).Required()
	gt.Value(t, texts(clusters[0])).Equal([]string{"a", "b"})
	gt.Value(t, texts(clusters[1])).Equal([]string{"c"})
}

func TestClusterDiscoveryOrder(t *testing.T) {
	clusters, err := cluster.New().Cluster(context.Background(), []*model.Candidate{
		candidate("x1", 10, 10),
		candidate("y1", 0, 0),
		candidate("x2", 10, 10.2),
		candidate("z1", -10, 5),
		candidate("y2", 0.1, 0),
	})
	gt.NoError(t, err).Required()
	gt.Array(t, clusters).Length(3).Required()

	gt.Value(t, texts(clusters[0])).Equal([]string{"x1", "x2"})
	gt.Value(t, texts(clusters[1])).Equal([]string{"y1", "y2"})
	gt.Value(t, texts(clusters[2])).Equal([]string{"z1"})
	for i, cl := range clusters {
		gt.Number(t, cl.Index).Equal(i)
	}
}

func randomCandidates(seed int64, n, dim int) []*model.Candidate {
	rng := rand.New(rand.NewSource(seed))
	out := make([]*model.Candidate, n)
	for i := range out {
		emb := make([]float32, dim)
		for d := range emb {
			emb[d] = float32(rng.NormFloat64() * 0.6)
		}
		out[i] = &model.Candidate{Text: string(rune('A' + i%26)), Embedding: emb}
	}
	return out
}

func TestClusterDeterministic(t *testing.T) {
	ctx := context.Background()
	input := randomCandidates(42, 60, 8)

	first, err := cluster.New().Cluster(ctx, input)
	gt.NoError(t, err).Required()

	for range 5 {
		again, err := cluster.New().Cluster(ctx, input)
		gt.NoError(t, err).Required()
		gt.Array(t, again).Length(len(first)).Required()
		for i := range first {
			gt.Value(t, again[i].Members).Equal(first[i].Members)
		}
	}
}

func TestClusterPartition(t *testing.T) {
	ctx := context.Background()
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		input := randomCandidates(seed, 40, 6)
		clusters, err := cluster.New().Cluster(ctx, input)
		gt.NoError(t, err).Required()

		seen := make(map[*model.Candidate]int)
		for _, cl := range clusters {
			gt.Number(t, len(cl.Members)).GreaterOrEqual(1)
			for _, m := range cl.Members {
				seen[m]++
			}
		}
		gt.Number(t, len(seen)).Equal(len(input))
		for _, c := range input {
			gt.Number(t, seen[c]).Equal(1)
		}
	}
}

func TestClusterInvalidInput(t *testing.T) {
	ctx := context.Background()

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := cluster.New().Cluster(ctx, []*model.Candidate{
			candidate("a", 0, 0),
			candidate("b", 0, 0, 0),
		})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("missing embedding", func(t *testing.T) {
		_, err := cluster.New().Cluster(ctx, []*model.Candidate{candidate("a")})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("nil candidate", func(t *testing.T) {
		_, err := cluster.New().Cluster(ctx, []*model.Candidate{candidate("a", 0), nil})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})
}

func TestEuclidean(t *testing.T) {
	gt.Number(t, cluster.Euclidean([]float32{0, 0}, []float32{3, 4})).Equal(5)
	gt.Number(t, cluster.Euclidean([]float32{1, 1}, []float32{1, 1})).Equal(0)
}

package seeder

import "math/rand"

// Overlap summarizes how densely the generated posts share tags.
type Overlap struct {
	AvgTagsPerPost float64 `yaml:"avg_tags_per_post"`
	// PairProbability is the sampled probability that two distinct random
	// posts share at least one tag.
	PairProbability float64 `yaml:"pair_probability"`
	// Coverage is the fraction of posts that share a tag with at least one
	// other post, i.e. posts that would get a non-empty "similar posts" list.
	Coverage float64 `yaml:"coverage"`
}

// MeasureOverlap samples post pairs with its own random source so the
// measurement never disturbs a generation run.
func MeasureOverlap(ds *Dataset, samples int, seed int64) Overlap {
	var out Overlap
	if len(ds.Posts) == 0 {
		return out
	}

	tagsByPost := make(map[int]map[int]bool, len(ds.Posts))
	postsByTag := make(map[int]int)
	for _, link := range ds.TagLinks {
		if tagsByPost[link.PostID] == nil {
			tagsByPost[link.PostID] = make(map[int]bool)
		}
		tagsByPost[link.PostID][link.TagID] = true
		postsByTag[link.TagID]++
	}
	out.AvgTagsPerPost = float64(len(ds.TagLinks)) / float64(len(ds.Posts))

	covered := 0
	for _, post := range ds.Posts {
		for tagID := range tagsByPost[post.ID] {
			if postsByTag[tagID] > 1 {
				covered++
				break
			}
		}
	}
	out.Coverage = float64(covered) / float64(len(ds.Posts))

	if len(ds.Posts) < 2 || samples <= 0 {
		return out
	}

	rng := rand.New(rand.NewSource(seed))
	shared := 0
	for i := 0; i < samples; i++ {
		a := ds.Posts[rng.Intn(len(ds.Posts))].ID
		b := ds.Posts[rng.Intn(len(ds.Posts))].ID
		for a == b {
			b = ds.Posts[rng.Intn(len(ds.Posts))].ID
		}
		if sharesTag(tagsByPost[a], tagsByPost[b]) {
			shared++
		}
	}
	out.PairProbability = float64(shared) / float64(samples)
	return out
}

func sharesTag(a, b map[int]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for tagID := range a {
		if b[tagID] {
			return true
		}
	}
	return false
}

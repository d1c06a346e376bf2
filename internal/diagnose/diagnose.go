package diagnose

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/blogseed/internal/database/common"
	"github.com/Rana718/blogseed/internal/seeder"
)

// SimilarLimit is how many similar posts the post detail page shows.
const SimilarLimit = 4

// LowDensityTags and LowDensityAvg bound the tag space above which a low
// tags-per-post average makes similar-post lists mostly empty.
const (
	LowDensityTags = 100
	LowDensityAvg  = 3.0
)

type Querier interface {
	ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error)
	PlaceholderFormat() squirrel.PlaceholderFormat
}

type Tag struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type Post struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title"`
	Slug  string `yaml:"slug,omitempty"`
	Tags  []Tag  `yaml:"tags,omitempty"`
}

type SimilarPost struct {
	ID         int64  `yaml:"id"`
	Title      string `yaml:"title"`
	SharedTags int64  `yaml:"shared_tags"`
}

type Report struct {
	TotalPosts     int64         `yaml:"total_posts"`
	PublishedPosts int64         `yaml:"published_posts"`
	TotalTags      int64         `yaml:"total_tags"`
	TaggedPosts    int64         `yaml:"tagged_posts"`
	TagLinks       int64         `yaml:"tag_links"`
	AvgTagsPerPost float64       `yaml:"avg_tags_per_post"`
	Sample         *Post         `yaml:"sample,omitempty"`
	SimilarCount   int64         `yaml:"similar_count"`
	Similar        []SimilarPost `yaml:"similar,omitempty"`
	LowDensity     bool          `yaml:"low_density"`
}

type runner struct {
	q  Querier
	qb squirrel.StatementBuilderType
}

// Run collects tag and similar-post statistics from a loaded database. It
// only reads. A database without published or tagged posts yields a report
// with Sample left nil.
func Run(ctx context.Context, q Querier) (*Report, error) {
	r := &runner{
		q:  q,
		qb: squirrel.StatementBuilder.PlaceholderFormat(q.PlaceholderFormat()),
	}
	rep := &Report{}
	var err error

	if rep.TotalPosts, err = r.count(ctx, r.qb.Select("COUNT(*)").From(seeder.TablePosts)); err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if rep.PublishedPosts, err = r.count(ctx, r.qb.Select("COUNT(*)").From(seeder.TablePosts).
		Where(squirrel.Eq{"status": seeder.StatusPublished})); err != nil {
		return nil, fmt.Errorf("failed to count published posts: %w", err)
	}
	if rep.TotalTags, err = r.count(ctx, r.qb.Select("COUNT(*)").From(seeder.TableTags)); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	if rep.TaggedPosts, err = r.count(ctx, r.qb.Select("COUNT(DISTINCT object_id)").From(seeder.TableTaggedItems).
		Where("content_type_id = "+seeder.ContentTypeSubquery)); err != nil {
		return nil, fmt.Errorf("failed to count tagged posts: %w", err)
	}
	if rep.TagLinks, err = r.count(ctx, r.qb.Select("COUNT(*)").From(seeder.TableTaggedItems).
		Where("content_type_id = "+seeder.ContentTypeSubquery)); err != nil {
		return nil, fmt.Errorf("failed to count tag links: %w", err)
	}

	if rep.TotalPosts > 0 {
		rep.AvgTagsPerPost = float64(rep.TagLinks) / float64(rep.TotalPosts)
	}
	rep.LowDensity = rep.TotalTags > LowDensityTags && rep.AvgTagsPerPost < LowDensityAvg

	if rep.PublishedPosts == 0 {
		return rep, nil
	}

	if rep.Sample, err = r.samplePost(ctx); err != nil {
		return nil, err
	}
	if rep.Sample == nil {
		return rep, nil
	}

	if rep.Sample.Tags, err = r.postTags(ctx, rep.Sample.ID); err != nil {
		return nil, err
	}
	if len(rep.Sample.Tags) == 0 {
		return rep, nil
	}

	tagIDs := make([]int64, len(rep.Sample.Tags))
	for i, t := range rep.Sample.Tags {
		tagIDs[i] = t.ID
	}
	if rep.SimilarCount, err = r.count(ctx, r.similarBase(rep.Sample.ID, tagIDs).Columns("COUNT(DISTINCT p.id)")); err != nil {
		return nil, fmt.Errorf("failed to count similar posts: %w", err)
	}
	if rep.Similar, err = r.similarPosts(ctx, rep.Sample.ID, tagIDs); err != nil {
		return nil, err
	}

	return rep, nil
}

func (r *runner) taggedJoin() string {
	return fmt.Sprintf("%s ti ON ti.object_id = p.id AND ti.content_type_id = %s",
		seeder.TableTaggedItems, seeder.ContentTypeSubquery)
}

// samplePost picks the most recently published post that carries a tag.
func (r *runner) samplePost(ctx context.Context) (*Post, error) {
	tagged := r.qb.Select("1").From(seeder.TableTaggedItems + " ti").
		Where("ti.object_id = p.id").
		Where("ti.content_type_id = " + seeder.ContentTypeSubquery)

	query := r.qb.Select("p.id", "p.title", "p.slug").
		From(seeder.TablePosts + " p").
		Where(squirrel.Eq{"p.status": seeder.StatusPublished}).
		Where(squirrel.Expr("EXISTS (?)", tagged)).
		OrderBy("p.publish DESC", "p.id DESC").
		Limit(1)

	result, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find sample post: %w", err)
	}
	if len(result.Rows) == 0 {
		return nil, nil
	}

	row := result.Rows[0]
	return &Post{
		ID:    asInt64(row["id"]),
		Title: asString(row["title"]),
		Slug:  asString(row["slug"]),
	}, nil
}

func (r *runner) postTags(ctx context.Context, postID int64) ([]Tag, error) {
	query := r.qb.Select("t.id", "t.name").
		From(seeder.TableTags + " t").
		Join(seeder.TableTaggedItems + " ti ON ti.tag_id = t.id").
		Where(squirrel.Eq{"ti.object_id": postID}).
		Where("ti.content_type_id = " + seeder.ContentTypeSubquery).
		OrderBy("t.id")

	result, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags of post %d: %w", postID, err)
	}

	tags := make([]Tag, 0, len(result.Rows))
	for _, row := range result.Rows {
		tags = append(tags, Tag{ID: asInt64(row["id"]), Name: asString(row["name"])})
	}
	return tags, nil
}

// similarBase selects published posts other than postID linked to any of
// tagIDs. Callers add the result columns.
func (r *runner) similarBase(postID int64, tagIDs []int64) squirrel.SelectBuilder {
	return r.qb.Select().
		From(seeder.TablePosts + " p").
		Join(r.taggedJoin()).
		Where(squirrel.Eq{"p.status": seeder.StatusPublished}).
		Where(squirrel.NotEq{"p.id": postID}).
		Where(squirrel.Eq{"ti.tag_id": tagIDs})
}

func (r *runner) similarPosts(ctx context.Context, postID int64, tagIDs []int64) ([]SimilarPost, error) {
	query := r.similarBase(postID, tagIDs).
		Columns("p.id", "p.title", "COUNT(ti.tag_id) AS shared_tags").
		GroupBy("p.id", "p.title", "p.publish").
		OrderBy("shared_tags DESC", "p.publish DESC", "p.id DESC").
		Limit(SimilarLimit)

	result, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to rank similar posts: %w", err)
	}

	similar := make([]SimilarPost, 0, len(result.Rows))
	for _, row := range result.Rows {
		similar = append(similar, SimilarPost{
			ID:         asInt64(row["id"]),
			Title:      asString(row["title"]),
			SharedTags: asInt64(row["shared_tags"]),
		})
	}
	return similar, nil
}

func (r *runner) query(ctx context.Context, builder squirrel.Sqlizer) (*common.QueryResult, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.q.ExecuteQuery(ctx, sql, args...)
}

func (r *runner) count(ctx context.Context, builder squirrel.Sqlizer) (int64, error) {
	result, err := r.query(ctx, builder)
	if err != nil {
		return 0, err
	}
	if len(result.Rows) == 0 || len(result.Columns) == 0 {
		return 0, nil
	}
	return asInt64(result.Rows[0][result.Columns[0]]), nil
}

// asInt64 normalizes integer values across drivers. MySQL's text protocol
// returns numbers as strings.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

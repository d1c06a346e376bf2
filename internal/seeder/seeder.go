package seeder

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// Seeder turns a fixed set of Params into a reproducible SQL seed script.
type Seeder struct {
	params Params
	graph  *DependencyGraph
	qb     squirrel.StatementBuilderType
}

// Result is one generation run: the dataset, what was requested versus what
// the retry budgets allowed, and the rendered script lines.
type Result struct {
	Params  Params
	Dataset *Dataset
	Counts  Counts
	Lines   []string
}

func (r *Result) Script() string {
	return strings.Join(r.Lines, "\n")
}

// Statements returns the executable lines of the script, skipping comments
// and blank separators.
func (r *Result) Statements() []string {
	out := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (r *Result) Shortfalls() []Shortfall {
	return r.Counts.Shortfalls()
}

func blogTables() []*TableInfo {
	return []*TableInfo{
		{
			Name:    TableUsers,
			Columns: []string{"id", "password", "last_login", "is_superuser", "username", "first_name", "last_name", "email", "is_staff", "is_active", "date_joined"},
		},
		{Name: TableCategories, Columns: []string{"id", "name", "slug"}},
		{Name: TableTags, Columns: []string{"id", "name", "slug"}},
		{
			Name:         TablePosts,
			Columns:      []string{"id", "title", "slug", "author_id", "body", "publish", "created", "updated", "status", "category_id"},
			Dependencies: []string{TableUsers, TableCategories},
		},
		{
			Name:         TableTaggedItems,
			Columns:      []string{"id", "tag_id", "content_type_id", "object_id"},
			Dependencies: []string{TableTags, TablePosts},
		},
		{
			Name:         TableComments,
			Columns:      []string{"id", "post_id", "user_id", "body", "created", "updated", "approved"},
			Dependencies: []string{TablePosts, TableUsers},
		},
		{
			Name:         TableLikes,
			Columns:      []string{"id", "post_id", "user_id", "created"},
			Dependencies: []string{TablePosts, TableUsers},
		},
	}
}

func New(params Params) (*Seeder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	graph := NewDependencyGraph()
	for _, table := range blogTables() {
		graph.AddTable(table)
	}
	if _, err := graph.BuildInsertionOrder(); err != nil {
		return nil, fmt.Errorf("failed to build insertion order: %w", err)
	}

	if params.Now.IsZero() {
		params.Now = time.Now().UTC().Truncate(time.Second)
	}

	return &Seeder{
		params: params,
		graph:  graph,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Generate is a shorthand for New followed by Seeder.Generate.
func Generate(params Params) (*Result, error) {
	s, err := New(params)
	if err != nil {
		return nil, err
	}
	return s.Generate()
}

// InsertionOrder reports the tables in the order their rows are emitted.
func (s *Seeder) InsertionOrder() []string {
	return s.graph.GetOrder()
}

// Generate builds the dataset and renders it. Each call starts a fresh random
// source from the seed, so repeated calls return identical results.
func (s *Seeder) Generate() (*Result, error) {
	gen := NewDataGenerator(s.params.Seed)
	ds := &Dataset{}
	var counts Counts

	for _, table := range s.graph.GetOrder() {
		switch table {
		case TableUsers:
			counts.Users = s.buildUsers(gen, ds)
		case TableCategories:
			counts.Categories = s.buildCategories(ds)
		case TableTags:
			counts.Tags = s.buildTags(ds)
		case TablePosts:
			counts.Posts = s.buildPosts(gen, ds)
		case TableTaggedItems:
			counts.TagLinks = s.buildTagLinks(gen, ds)
		case TableComments:
			counts.Comments = s.buildComments(gen, ds)
		case TableLikes:
			counts.Likes = s.buildLikes(gen, ds)
		default:
			return nil, fmt.Errorf("no generator registered for table %s", table)
		}
	}

	lines, err := s.render(ds)
	if err != nil {
		return nil, err
	}

	return &Result{
		Params:  s.params,
		Dataset: ds,
		Counts:  counts,
		Lines:   lines,
	}, nil
}

func (s *Seeder) buildUsers(gen *DataGenerator, ds *Dataset) Count {
	now := s.params.Now
	ds.Users = make([]User, 0, s.params.Users)
	for i := 1; i <= s.params.Users; i++ {
		name := username(i)
		ds.Users = append(ds.Users, User{
			ID:          i,
			Username:    name,
			Email:       email(i),
			Password:    passwordPlaceholder(name),
			FirstName:   fmt.Sprintf("First%d", i),
			LastName:    fmt.Sprintf("Last%d", i),
			IsSuperuser: i == 1,
			IsStaff:     i <= 10,
			IsActive:    true,
			DateJoined:  now.Add(-gen.Days(0, 1000)),
		})
	}
	return Count{Requested: s.params.Users, Achieved: len(ds.Users)}
}

func (s *Seeder) buildCategories(ds *Dataset) Count {
	ds.Categories = make([]Category, 0, s.params.Categories)
	for i := 1; i <= s.params.Categories; i++ {
		ds.Categories = append(ds.Categories, Category{
			ID:   i,
			Name: fmt.Sprintf("Category %d", i),
			Slug: fmt.Sprintf("category-%d", i),
		})
	}
	return Count{Requested: s.params.Categories, Achieved: len(ds.Categories)}
}

func (s *Seeder) buildTags(ds *Dataset) Count {
	ds.Tags = make([]Tag, 0, s.params.Tags)
	for i := 1; i <= s.params.Tags; i++ {
		ds.Tags = append(ds.Tags, Tag{
			ID:   i,
			Name: fmt.Sprintf("tag%d", i),
			Slug: fmt.Sprintf("tag-%d", i),
		})
	}
	return Count{Requested: s.params.Tags, Achieved: len(ds.Tags)}
}

func (s *Seeder) buildPosts(gen *DataGenerator, ds *Dataset) Count {
	now := s.params.Now
	ds.Posts = make([]Post, 0, s.params.Posts)
	for i := 1; i <= s.params.Posts; i++ {
		post := Post{
			ID:       i,
			Title:    fmt.Sprintf("Seeded Post %d", i),
			Slug:     fmt.Sprintf("seeded-post-%d", i),
			AuthorID: gen.Between(1, s.params.Users),
			Body:     postBody(i),
		}
		// ~90% categorized; the coin is drawn even without categories
		if gen.Chance(0.9) && s.params.Categories > 0 {
			post.CategoryID = gen.Between(1, s.params.Categories)
		}
		// a negative day offset puts the publish date in the future
		post.Publish = now.Add(-gen.Offset(-30, 720))
		post.Created = post.Publish.Add(-gen.Days(0, 30))
		post.Updated = post.Created.Add(gen.Days(0, 30))
		post.Status = StatusDraft
		if gen.Chance(0.65) {
			post.Status = StatusPublished
		}
		ds.Posts = append(ds.Posts, post)
	}
	return Count{Requested: s.params.Posts, Achieved: len(ds.Posts)}
}

// buildTagLinks samples tags per post without replacement. A post gives up
// after maxTagAttempts draws, so it may end up with fewer tags than wanted.
// With an empty tag pool the 0.25 coin is still drawn and counted as
// requested, but nothing is linked.
func (s *Seeder) buildTagLinks(gen *DataGenerator, ds *Dataset) Count {
	var requested int
	nextID := 1
	for _, post := range ds.Posts {
		want := s.params.AvgTagsPerPost
		if gen.Chance(0.25) {
			want++
		}
		requested += want
		if s.params.Tags == 0 {
			continue
		}

		chosen := make(map[int]bool, want)
		for attempts := 0; len(chosen) < want && attempts < maxTagAttempts; attempts++ {
			tagID := gen.Between(1, s.params.Tags)
			if chosen[tagID] {
				continue
			}
			chosen[tagID] = true
			ds.TagLinks = append(ds.TagLinks, TagLink{ID: nextID, TagID: tagID, PostID: post.ID})
			nextID++
		}
	}
	return Count{Requested: requested, Achieved: len(ds.TagLinks)}
}

// buildComments spreads comments round-robin over the posts.
func (s *Seeder) buildComments(gen *DataGenerator, ds *Dataset) Count {
	now := s.params.Now
	ds.Comments = make([]Comment, 0, s.params.Comments)
	for i := 1; i <= s.params.Comments; i++ {
		postID := (i-1)%s.params.Posts + 1
		c := Comment{
			ID:     i,
			PostID: postID,
			UserID: gen.Between(1, s.params.Users),
			Body:   commentBody(i, postID),
		}
		c.Created = now.Add(-gen.Offset(0, 900))
		c.Updated = c.Created.Add(gen.Hours(0, 200))
		c.Approved = gen.Chance(0.5)
		ds.Comments = append(ds.Comments, c)
	}
	return Count{Requested: s.params.Comments, Achieved: len(ds.Comments)}
}

// buildLikes draws (post, user) pairs until the target is met or the attempt
// budget runs out. Duplicate pairs are rejected.
func (s *Seeder) buildLikes(gen *DataGenerator, ds *Dataset) Count {
	type pair struct{ post, user int }

	now := s.params.Now
	seen := make(map[pair]bool, s.params.Likes)
	maxAttempts := s.params.Likes * likeAttemptsPerLike
	ds.Likes = make([]Like, 0, s.params.Likes)

	for attempts := 0; len(ds.Likes) < s.params.Likes && attempts < maxAttempts; attempts++ {
		p := pair{post: gen.Between(1, s.params.Posts), user: gen.Between(1, s.params.Users)}
		if seen[p] {
			continue
		}
		seen[p] = true
		ds.Likes = append(ds.Likes, Like{
			ID:      len(ds.Likes) + 1,
			PostID:  p.post,
			UserID:  p.user,
			Created: now.Add(-gen.Offset(0, 900)),
		})
	}
	return Count{Requested: s.params.Likes, Achieved: len(ds.Likes)}
}

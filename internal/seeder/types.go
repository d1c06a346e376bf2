package seeder

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidParams = errors.New("invalid seed parameters")

const (
	TableUsers       = "auth_user"
	TableCategories  = "blog_category"
	TableTags        = "taggit_tag"
	TablePosts       = "blog_post"
	TableTaggedItems = "taggit_taggeditem"
	TableComments    = "blog_comment"
	TableLikes       = "blog_like"
)

// ContentTypeSubquery resolves the content type id of blog.Post at load time.
const ContentTypeSubquery = "(SELECT id FROM django_content_type WHERE app_label='blog' AND model='post')"

const (
	StatusPublished = "PB"
	StatusDraft     = "DF"
)

const (
	maxTagAttempts      = 50
	likeAttemptsPerLike = 10
)

// Params holds the cardinalities and the random seed of one generation run.
type Params struct {
	Users          int
	Categories     int
	Tags           int
	Posts          int
	Comments       int
	Likes          int
	AvgTagsPerPost int
	Seed           int64
	Now            time.Time // reference time all timestamps are derived from
	Dialect        Dialect
}

func DefaultParams() Params {
	return Params{
		Users:          1000,
		Categories:     20,
		Tags:           50,
		Posts:          1000,
		Comments:       1000,
		Likes:          1000,
		AvgTagsPerPost: 3,
		Seed:           42,
		Now:            time.Now().UTC().Truncate(time.Second),
		Dialect:        DialectSQLite,
	}
}

func (p Params) Validate() error {
	if p.Users <= 0 {
		return fmt.Errorf("%w: users must be positive, got %d", ErrInvalidParams, p.Users)
	}
	if p.Posts <= 0 {
		return fmt.Errorf("%w: posts must be positive, got %d", ErrInvalidParams, p.Posts)
	}
	counts := map[string]int{
		"categories":        p.Categories,
		"tags":              p.Tags,
		"comments":          p.Comments,
		"likes":             p.Likes,
		"avg_tags_per_post": p.AvgTagsPerPost,
	}
	for _, name := range []string{"categories", "tags", "comments", "likes", "avg_tags_per_post"} {
		if counts[name] < 0 {
			return fmt.Errorf("%w: %s cannot be negative, got %d", ErrInvalidParams, name, counts[name])
		}
	}
	if p.Tags == 0 && p.AvgTagsPerPost > 0 {
		return fmt.Errorf("%w: avg_tags_per_post is %d but there are no tags", ErrInvalidParams, p.AvgTagsPerPost)
	}
	if !p.Dialect.Valid() {
		return fmt.Errorf("%w: unsupported dialect %q", ErrInvalidParams, p.Dialect)
	}
	return nil
}

type TableInfo struct {
	Name         string
	Columns      []string
	Dependencies []string
}

type User struct {
	ID          int
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsSuperuser bool
	IsStaff     bool
	IsActive    bool
	DateJoined  time.Time
}

type Category struct {
	ID   int
	Name string
	Slug string
}

type Tag struct {
	ID   int
	Name string
	Slug string
}

type Post struct {
	ID         int
	Title      string
	Slug       string
	AuthorID   int
	CategoryID int // 0 means uncategorized
	Body       string
	Publish    time.Time
	Created    time.Time
	Updated    time.Time
	Status     string
}

type TagLink struct {
	ID     int
	TagID  int
	PostID int
}

type Comment struct {
	ID       int
	PostID   int
	UserID   int
	Body     string
	Created  time.Time
	Updated  time.Time
	Approved bool
}

type Like struct {
	ID      int
	PostID  int
	UserID  int
	Created time.Time
}

// Dataset is the in-memory result of the generation phases, before rendering.
type Dataset struct {
	Users      []User
	Categories []Category
	Tags       []Tag
	Posts      []Post
	TagLinks   []TagLink
	Comments   []Comment
	Likes      []Like
}

type Count struct {
	Requested int `yaml:"requested"`
	Achieved  int `yaml:"achieved"`
}

type Counts struct {
	Users      Count `yaml:"users"`
	Categories Count `yaml:"categories"`
	Tags       Count `yaml:"tags"`
	Posts      Count `yaml:"posts"`
	TagLinks   Count `yaml:"tag_links"`
	Comments   Count `yaml:"comments"`
	Likes      Count `yaml:"likes"`
}

type Shortfall struct {
	Entity    string
	Requested int
	Achieved  int
}

func (s Shortfall) String() string {
	return fmt.Sprintf("%s: %d of %d requested", s.Entity, s.Achieved, s.Requested)
}

// Shortfalls lists every entity whose retry budget ran out before the
// requested row count was reached.
func (c Counts) Shortfalls() []Shortfall {
	entries := []struct {
		name  string
		count Count
	}{
		{"users", c.Users},
		{"categories", c.Categories},
		{"tags", c.Tags},
		{"posts", c.Posts},
		{"tag_links", c.TagLinks},
		{"comments", c.Comments},
		{"likes", c.Likes},
	}

	var out []Shortfall
	for _, e := range entries {
		if e.count.Achieved < e.count.Requested {
			out = append(out, Shortfall{Entity: e.name, Requested: e.count.Requested, Achieved: e.count.Achieved})
		}
	}
	return out
}

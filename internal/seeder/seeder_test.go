package seeder

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testParams() Params {
	p := DefaultParams()
	p.Now = fixedNow
	return p
}

func smallParams() Params {
	return Params{
		Users:          10,
		Categories:     2,
		Tags:           5,
		Posts:          5,
		Comments:       5,
		Likes:          5,
		AvgTagsPerPost: 3,
		Seed:           42,
		Now:            fixedNow,
		Dialect:        DialectSQLite,
	}
}

func insertsFor(lines []string, table string) []string {
	prefix := "INSERT INTO " + table + " "
	var out []string
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}

var leadingValues = regexp.MustCompile(`VALUES \((\d+),(\d+),(\d+)`)

func leadingInts(t *testing.T, stmt string) (int, int, int) {
	t.Helper()
	m := leadingValues.FindStringSubmatch(stmt)
	require.NotNil(t, m, "no leading integer values in %q", stmt)
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])
	return a, b, c
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := Generate(testParams())
	require.NoError(t, err)
	second, err := Generate(testParams())
	require.NoError(t, err)

	assert.Equal(t, first.Script(), second.Script())
	assert.Equal(t, first.Counts, second.Counts)
}

func TestSeederGenerateCanBeRepeated(t *testing.T) {
	s, err := New(smallParams())
	require.NoError(t, err)

	first, err := s.Generate()
	require.NoError(t, err)
	second, err := s.Generate()
	require.NoError(t, err)

	assert.Equal(t, first.Script(), second.Script())
}

func TestDifferentSeedsProduceDifferentScripts(t *testing.T) {
	p := smallParams()
	a, err := Generate(p)
	require.NoError(t, err)

	p.Seed = 7
	b, err := Generate(p)
	require.NoError(t, err)

	assert.NotEqual(t, a.Script(), b.Script())
}

func TestSmallScenario(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	assert.Len(t, insertsFor(result.Lines, TableUsers), 10)
	assert.Len(t, insertsFor(result.Lines, TablePosts), 5)

	comments := insertsFor(result.Lines, TableComments)
	require.Len(t, comments, 5)
	for i, stmt := range comments {
		id, postID, _ := leadingInts(t, stmt)
		assert.Equal(t, i+1, id)
		assert.Equal(t, i+1, postID, "comment %d should land on post %d", id, i+1)
	}

	likes := insertsFor(result.Lines, TableLikes)
	assert.LessOrEqual(t, len(likes), 5)
	seen := make(map[[2]int]bool)
	for _, stmt := range likes {
		_, postID, userID := leadingInts(t, stmt)
		pair := [2]int{postID, userID}
		assert.False(t, seen[pair], "duplicate like pair %v", pair)
		seen[pair] = true
	}
}

func TestUserRows(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	users := insertsFor(result.Lines, TableUsers)
	require.Len(t, users, 10)

	assert.Contains(t, users[0], "VALUES (1,'pbkdf2_sha256$260000$")
	assert.Contains(t, users[0], ",NULL,1,'user1','First1','Last1','user1@example.com',1,1,")
	assert.Contains(t, users[9], ",NULL,0,'user10','First10','Last10','user10@example.com',1,1,")

	for _, u := range result.Dataset.Users {
		assert.Equal(t, u.ID == 1, u.IsSuperuser)
		assert.Equal(t, u.ID <= 10, u.IsStaff)
		assert.True(t, u.IsActive)
		assert.Equal(t, passwordPlaceholder(u.Username), u.Password)
		assert.False(t, u.DateJoined.After(fixedNow))
		assert.False(t, u.DateJoined.Before(fixedNow.AddDate(0, 0, -1000)))
	}
}

func TestReferentialIntegrity(t *testing.T) {
	p := testParams()
	p.Users, p.Posts, p.Comments, p.Likes = 200, 300, 400, 500
	result, err := Generate(p)
	require.NoError(t, err)
	ds := result.Dataset

	for _, post := range ds.Posts {
		assert.GreaterOrEqual(t, post.AuthorID, 1)
		assert.LessOrEqual(t, post.AuthorID, p.Users)
		if post.CategoryID != 0 {
			assert.GreaterOrEqual(t, post.CategoryID, 1)
			assert.LessOrEqual(t, post.CategoryID, p.Categories)
		}
		assert.False(t, post.Created.After(post.Publish))
		assert.False(t, post.Updated.Before(post.Created))
		assert.Contains(t, []string{StatusPublished, StatusDraft}, post.Status)
	}
	for _, link := range ds.TagLinks {
		assert.GreaterOrEqual(t, link.TagID, 1)
		assert.LessOrEqual(t, link.TagID, p.Tags)
		assert.GreaterOrEqual(t, link.PostID, 1)
		assert.LessOrEqual(t, link.PostID, p.Posts)
	}
	for _, c := range ds.Comments {
		assert.LessOrEqual(t, c.PostID, p.Posts)
		assert.GreaterOrEqual(t, c.UserID, 1)
		assert.LessOrEqual(t, c.UserID, p.Users)
	}
	for _, l := range ds.Likes {
		assert.GreaterOrEqual(t, l.PostID, 1)
		assert.LessOrEqual(t, l.PostID, p.Posts)
		assert.GreaterOrEqual(t, l.UserID, 1)
		assert.LessOrEqual(t, l.UserID, p.Users)
	}
}

func TestInsertsFollowReferencedTables(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	first := make(map[string]int)
	last := make(map[string]int)
	for i, line := range result.Lines {
		for _, table := range blogTables() {
			if strings.HasPrefix(line, "INSERT INTO "+table.Name+" ") {
				if _, ok := first[table.Name]; !ok {
					first[table.Name] = i
				}
				last[table.Name] = i
			}
		}
	}

	for _, table := range blogTables() {
		for _, dep := range table.Dependencies {
			assert.Greater(t, first[table.Name], last[dep], "%s rows must come after %s rows", table.Name, dep)
		}
	}
}

func TestUniqueSlugsAndLikePairs(t *testing.T) {
	result, err := Generate(testParams())
	require.NoError(t, err)
	ds := result.Dataset

	slugs := make(map[string]bool)
	for _, c := range ds.Categories {
		assert.False(t, slugs[c.Slug], "duplicate category slug %s", c.Slug)
		slugs[c.Slug] = true
	}
	slugs = make(map[string]bool)
	for _, tag := range ds.Tags {
		assert.False(t, slugs[tag.Slug], "duplicate tag slug %s", tag.Slug)
		slugs[tag.Slug] = true
	}

	pairs := make(map[[2]int]bool)
	for _, l := range ds.Likes {
		pair := [2]int{l.PostID, l.UserID}
		assert.False(t, pairs[pair], "duplicate like pair %v", pair)
		pairs[pair] = true
	}

	perPost := make(map[int]map[int]bool)
	for _, link := range ds.TagLinks {
		if perPost[link.PostID] == nil {
			perPost[link.PostID] = make(map[int]bool)
		}
		assert.False(t, perPost[link.PostID][link.TagID], "post %d tagged twice with %d", link.PostID, link.TagID)
		perPost[link.PostID][link.TagID] = true
	}
}

func TestCardinalities(t *testing.T) {
	result, err := Generate(testParams())
	require.NoError(t, err)

	assert.Equal(t, 1000, result.Counts.Comments.Achieved)
	assert.Len(t, insertsFor(result.Lines, TableComments), 1000)
	assert.LessOrEqual(t, result.Counts.Likes.Achieved, 1000)
	assert.Len(t, insertsFor(result.Lines, TableLikes), result.Counts.Likes.Achieved)
	assert.Len(t, insertsFor(result.Lines, TableTaggedItems), result.Counts.TagLinks.Achieved)

	for i, link := range result.Dataset.TagLinks {
		assert.Equal(t, i+1, link.ID)
	}
}

func TestTagCountsPerPost(t *testing.T) {
	result, err := Generate(testParams())
	require.NoError(t, err)

	perPost := make(map[int]int)
	for _, link := range result.Dataset.TagLinks {
		perPost[link.PostID]++
	}
	for _, post := range result.Dataset.Posts {
		n := perPost[post.ID]
		assert.True(t, n == 3 || n == 4, "post %d has %d tags", post.ID, n)
	}
	assert.Empty(t, result.Shortfalls())
}

func TestShortfallsAreReported(t *testing.T) {
	p := smallParams()
	p.Users, p.Posts, p.Likes = 1, 1, 5
	p.Tags, p.AvgTagsPerPost = 2, 3

	result, err := Generate(p)
	require.NoError(t, err)

	assert.Equal(t, Count{Requested: 5, Achieved: 1}, result.Counts.Likes)
	assert.Equal(t, 2, result.Counts.TagLinks.Achieved)
	assert.GreaterOrEqual(t, result.Counts.TagLinks.Requested, 3)

	var entities []string
	for _, s := range result.Shortfalls() {
		entities = append(entities, s.Entity)
	}
	assert.Equal(t, []string{"tag_links", "likes"}, entities)
}

func TestWithoutCategoriesPostsAreUncategorized(t *testing.T) {
	p := smallParams()
	p.Categories = 0

	result, err := Generate(p)
	require.NoError(t, err)

	for _, post := range result.Dataset.Posts {
		assert.Zero(t, post.CategoryID)
	}
	for _, stmt := range insertsFor(result.Lines, TablePosts) {
		assert.True(t, strings.HasSuffix(stmt, ",NULL);"), stmt)
	}
}

func TestPostBodies(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	for _, post := range result.Dataset.Posts {
		want := 1 + post.ID%5
		assert.Equal(t, want, strings.Count(post.Body, "This is the seeded body for post "), "post %d", post.ID)
	}
}

func TestSQLitePreamble(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	want := []string{
		"-- SQLite seed SQL generated for django-taggit (blog)",
		"-- WARNING: this file deletes rows from target tables before inserting. Backup first if needed.",
		"PRAGMA foreign_keys = OFF;",
		"-- Clear existing rows (use with caution)",
		"DELETE FROM blog_like;",
		"DELETE FROM sqlite_sequence WHERE name='blog_like';",
		"DELETE FROM blog_comment;",
		"DELETE FROM sqlite_sequence WHERE name='blog_comment';",
		"DELETE FROM taggit_taggeditem;",
		"DELETE FROM sqlite_sequence WHERE name='taggit_taggeditem';",
		"DELETE FROM blog_post;",
		"DELETE FROM sqlite_sequence WHERE name='blog_post';",
		"DELETE FROM taggit_tag;",
		"DELETE FROM sqlite_sequence WHERE name='taggit_tag';",
		"DELETE FROM blog_category;",
		"DELETE FROM sqlite_sequence WHERE name='blog_category';",
		"DELETE FROM auth_user;",
		"DELETE FROM sqlite_sequence WHERE name='auth_user';",
		"PRAGMA foreign_keys = ON;",
		"",
		"-- auth_user rows",
	}
	require.GreaterOrEqual(t, len(result.Lines), len(want))
	assert.Equal(t, want, result.Lines[:len(want)])
	assert.Equal(t, "-- End of seed SQL", result.Lines[len(result.Lines)-1])

	for _, stmt := range result.Statements() {
		assert.True(t, strings.HasSuffix(stmt, ";"), stmt)
	}
}

func TestTagLinksUseContentTypeSubquery(t *testing.T) {
	result, err := Generate(smallParams())
	require.NoError(t, err)

	links := insertsFor(result.Lines, TableTaggedItems)
	require.NotEmpty(t, links)
	assert.Equal(t,
		"INSERT INTO taggit_taggeditem (id,tag_id,content_type_id,object_id) VALUES (1,"+
			strconv.Itoa(result.Dataset.TagLinks[0].TagID)+","+ContentTypeSubquery+",1);",
		links[0])
}

func TestPostgresDialect(t *testing.T) {
	p := smallParams()
	p.Dialect = DialectPostgres
	result, err := Generate(p)
	require.NoError(t, err)

	script := result.Script()
	assert.Contains(t, script, "SET session_replication_role = replica;")
	assert.Contains(t, script, "ALTER SEQUENCE auth_user_id_seq RESTART WITH 1;")
	assert.Contains(t, script, "SELECT setval(pg_get_serial_sequence('blog_like', 'id'), COALESCE((SELECT MAX(id) FROM blog_like), 1));")

	users := insertsFor(result.Lines, TableUsers)
	assert.Contains(t, users[0], ",NULL,TRUE,'user1',")
	assert.NotContains(t, script, "sqlite_sequence")
	for _, line := range insertsFor(result.Lines, TablePosts) {
		assert.Regexp(t, `'\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\+00'`, line)
	}
}

func TestMySQLDialect(t *testing.T) {
	p := smallParams()
	p.Dialect = DialectMySQL
	result, err := Generate(p)
	require.NoError(t, err)

	script := result.Script()
	assert.Contains(t, script, "SET FOREIGN_KEY_CHECKS = 0;")
	assert.Contains(t, script, "SET FOREIGN_KEY_CHECKS = 1;")
	assert.Contains(t, script, "ALTER TABLE blog_post AUTO_INCREMENT = 1;")
	assert.NotContains(t, script, "setval")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"no users", func(p *Params) { p.Users = 0 }},
		{"no posts", func(p *Params) { p.Posts = 0 }},
		{"negative comments", func(p *Params) { p.Comments = -1 }},
		{"negative likes", func(p *Params) { p.Likes = -3 }},
		{"negative categories", func(p *Params) { p.Categories = -1 }},
		{"tags required", func(p *Params) { p.Tags = 0 }},
		{"unknown dialect", func(p *Params) { p.Dialect = "oracle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smallParams()
			tt.modify(&p)
			_, err := New(p)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}

	p := smallParams()
	p.Tags, p.AvgTagsPerPost = 0, 0
	assert.NoError(t, p.Validate())
}

func TestEmptyTagPoolLinksNothing(t *testing.T) {
	p := smallParams()
	p.Tags, p.AvgTagsPerPost = 0, 0
	p.Posts = 40

	result, err := Generate(p)
	require.NoError(t, err)

	assert.Empty(t, result.Dataset.Tags)
	for _, link := range result.Dataset.TagLinks {
		assert.True(t, link.TagID >= 1 && link.TagID <= p.Tags, "tag link %d points at tag %d", link.ID, link.TagID)
	}
	assert.Empty(t, result.Dataset.TagLinks)
	assert.Empty(t, insertsFor(result.Lines, TableTaggedItems))

	// the 0.25 coin still asks for one tag on some posts
	assert.Greater(t, result.Counts.TagLinks.Requested, 0)
	assert.Equal(t, 0, result.Counts.TagLinks.Achieved)
	shortfalls := result.Shortfalls()
	require.NotEmpty(t, shortfalls)
	assert.Equal(t, "tag_links", shortfalls[0].Entity)
}

func TestZeroNowDefaultsToCurrentTime(t *testing.T) {
	p := smallParams()
	p.Now = time.Time{}

	s, err := New(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), s.params.Now, time.Minute)
}

func TestInsertionOrder(t *testing.T) {
	s, err := New(smallParams())
	require.NoError(t, err)

	assert.Equal(t, []string{
		TableUsers, TableCategories, TableTags, TablePosts, TableTaggedItems, TableComments, TableLikes,
	}, s.InsertionOrder())
}

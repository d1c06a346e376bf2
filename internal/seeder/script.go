package seeder

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

func sectionTitle(table string) string {
	if table == TableTaggedItems {
		return "taggit_taggeditem rows (link tags to blog.Post using django_content_type)"
	}
	return table + " rows"
}

func (s *Seeder) render(ds *Dataset) ([]string, error) {
	d := s.params.Dialect

	lines := []string{
		fmt.Sprintf("-- %s seed SQL generated for django-taggit (blog)", d.Title()),
		"-- WARNING: this file deletes rows from target tables before inserting. Backup first if needed.",
		d.RelaxIntegrity(),
		"-- Clear existing rows (use with caution)",
	}
	for _, table := range s.graph.ClearOrder() {
		lines = append(lines, d.ClearTable(table), d.ResetSequence(table))
	}
	lines = append(lines, d.RestoreIntegrity(), "")

	for _, table := range s.graph.GetOrder() {
		info := s.graph.Table(table)
		lines = append(lines, "-- "+sectionTitle(table))
		for _, values := range rowValues(table, ds) {
			stmt, err := s.insert(info, values)
			if err != nil {
				return nil, fmt.Errorf("failed to render %s row: %w", table, err)
			}
			lines = append(lines, stmt)
		}
		lines = append(lines, "")
	}

	var syncs []string
	for _, table := range s.graph.GetOrder() {
		if stmt, ok := d.SyncSequence(table); ok {
			syncs = append(syncs, stmt)
		}
	}
	if len(syncs) > 0 {
		lines = append(lines, "-- Move id sequences past the seeded ids")
		lines = append(lines, syncs...)
		lines = append(lines, "")
	}

	lines = append(lines, "-- End of seed SQL")
	return lines, nil
}

// insert builds the statement with squirrel and inlines its arguments, since
// the output is a static script rather than a live query.
func (s *Seeder) insert(table *TableInfo, values []interface{}) (string, error) {
	if len(values) != len(table.Columns) {
		return "", fmt.Errorf("table %s has %d columns but %d values", table.Name, len(table.Columns), len(values))
	}

	query, args, err := s.qb.Insert(table.Name).Columns(table.Columns...).Values(values...).ToSql()
	if err != nil {
		return "", err
	}

	stmt, err := inlinePlaceholders(query, args, func(v interface{}) string {
		return formatValue(s.params.Dialect, v)
	})
	if err != nil {
		return "", err
	}
	return stmt + ";", nil
}

// rowValues lists the column values of every row of a table, in the column
// order declared in blogTables.
func rowValues(table string, ds *Dataset) [][]interface{} {
	var rows [][]interface{}
	switch table {
	case TableUsers:
		for _, u := range ds.Users {
			rows = append(rows, []interface{}{
				u.ID, u.Password, nil, u.IsSuperuser, u.Username, u.FirstName, u.LastName,
				u.Email, u.IsStaff, u.IsActive, u.DateJoined,
			})
		}
	case TableCategories:
		for _, c := range ds.Categories {
			rows = append(rows, []interface{}{c.ID, c.Name, c.Slug})
		}
	case TableTags:
		for _, t := range ds.Tags {
			rows = append(rows, []interface{}{t.ID, t.Name, t.Slug})
		}
	case TablePosts:
		for _, p := range ds.Posts {
			var category interface{}
			if p.CategoryID > 0 {
				category = p.CategoryID
			}
			rows = append(rows, []interface{}{
				p.ID, p.Title, p.Slug, p.AuthorID, p.Body, p.Publish, p.Created, p.Updated, p.Status, category,
			})
		}
	case TableTaggedItems:
		for _, l := range ds.TagLinks {
			rows = append(rows, []interface{}{l.ID, l.TagID, squirrel.Expr(ContentTypeSubquery), l.PostID})
		}
	case TableComments:
		for _, c := range ds.Comments {
			rows = append(rows, []interface{}{c.ID, c.PostID, c.UserID, c.Body, c.Created, c.Updated, c.Approved})
		}
	case TableLikes:
		for _, l := range ds.Likes {
			rows = append(rows, []interface{}{l.ID, l.PostID, l.UserID, l.Created})
		}
	}
	return rows
}

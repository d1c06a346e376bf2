package seeder

import "fmt"

type DependencyGraph struct {
	tables map[string]*TableInfo
	names  []string // registration order, used to break ties
	order  []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		tables: make(map[string]*TableInfo),
	}
}

func (g *DependencyGraph) AddTable(table *TableInfo) {
	if _, exists := g.tables[table.Name]; !exists {
		g.names = append(g.names, table.Name)
	}
	g.tables[table.Name] = table
}

func (g *DependencyGraph) Table(name string) *TableInfo {
	return g.tables[name]
}

// BuildInsertionOrder returns the tables so that every table follows the
// tables it references. Independent tables keep their registration order.
func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("circular dependency detected involving table: %s", tableName)
		}
		if visited[tableName] {
			return nil
		}

		temp[tableName] = true
		table := g.tables[tableName]

		if table != nil {
			for _, dep := range table.Dependencies {
				if dep == tableName {
					continue
				}
				if _, known := g.tables[dep]; !known {
					return fmt.Errorf("table %s depends on unknown table %s", tableName, dep)
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	for _, tableName := range g.names {
		if !visited[tableName] {
			if err := visit(tableName); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

// ClearOrder is the insertion order reversed: dependents are cleared first.
func (g *DependencyGraph) ClearOrder() []string {
	out := make([]string, len(g.order))
	for i, name := range g.order {
		out[len(g.order)-1-i] = name
	}
	return out
}

func (g *DependencyGraph) GetOrder() []string {
	return g.order
}

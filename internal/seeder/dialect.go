package seeder

import (
	"fmt"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect accepts the dialect names and the database provider aliases
// used in the config file.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", name)
	}
}

func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectPostgres, DialectMySQL:
		return true
	}
	return false
}

func (d Dialect) Title() string {
	switch d {
	case DialectPostgres:
		return "PostgreSQL"
	case DialectMySQL:
		return "MySQL"
	default:
		return "SQLite"
	}
}

func (d Dialect) RelaxIntegrity() string {
	switch d {
	case DialectPostgres:
		return "SET session_replication_role = replica;"
	case DialectMySQL:
		return "SET FOREIGN_KEY_CHECKS = 0;"
	default:
		return "PRAGMA foreign_keys = OFF;"
	}
}

func (d Dialect) RestoreIntegrity() string {
	switch d {
	case DialectPostgres:
		return "SET session_replication_role = DEFAULT;"
	case DialectMySQL:
		return "SET FOREIGN_KEY_CHECKS = 1;"
	default:
		return "PRAGMA foreign_keys = ON;"
	}
}

func (d Dialect) ClearTable(table string) string {
	return fmt.Sprintf("DELETE FROM %s;", table)
}

func (d Dialect) ResetSequence(table string) string {
	switch d {
	case DialectPostgres:
		return fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1;", table)
	case DialectMySQL:
		return fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1;", table)
	default:
		return fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name='%s';", table)
	}
}

// SyncSequence moves the id sequence past the explicit ids once the inserts
// are done. Only PostgreSQL needs it; SQLite and MySQL advance on their own.
func (d Dialect) SyncSequence(table string) (string, bool) {
	if d != DialectPostgres {
		return "", false
	}
	return fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1));", table, table), true
}

func (d Dialect) Bool(v bool) string {
	if d == DialectPostgres {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	if v {
		return "1"
	}
	return "0"
}

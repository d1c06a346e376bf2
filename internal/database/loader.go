package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Rana718/blogseed/internal/database/common"
)

// TailSize bounds the script excerpt carried by a ScriptError.
const TailSize = 500

var ErrEmptyScript = errors.New("SQL file is empty")

// ScriptError reports a failed load together with the end of the script
// that was sent, which is usually enough to find the offending section.
type ScriptError struct {
	Err  error
	Tail string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("failed to execute seed script: %v", e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ReadScript reads a seed file, rejecting missing and empty files.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("SQL file not found: %s", path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyScript, path)
	}
	return string(data), nil
}

// RunScript executes script through the adapter. By default the whole
// script goes out in a single call; split runs it statement by statement
// inside one transaction instead.
func RunScript(ctx context.Context, adapter DatabaseAdapter, script string, split bool) error {
	if strings.TrimSpace(script) == "" {
		return ErrEmptyScript
	}

	var err error
	if split {
		err = adapter.ExecuteStatements(ctx, common.ParseSQLStatements(script))
	} else {
		err = adapter.ExecuteScript(ctx, script)
	}
	if err != nil {
		return &ScriptError{Err: err, Tail: common.Tail(script, TailSize)}
	}
	return nil
}

// LoadFile connects to url, runs the file at path and closes the connection.
func LoadFile(ctx context.Context, provider, url, path string, split bool) error {
	script, err := ReadScript(path)
	if err != nil {
		return err
	}

	adapter, err := NewAdapter(provider)
	if err != nil {
		return err
	}
	if err := adapter.Connect(ctx, url); err != nil {
		return err
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return RunScript(ctx, adapter, script, split)
}

package storage

import "context"

// TableReplacer is the interface any relational backend must satisfy for the loader.
type TableReplacer interface {
	Replace(ctx context.Context, table Table, rows [][]any) (int, error)
}

// TableReader reads back a shared table, used by the dashboard.
type TableReader interface {
	ReadTable(ctx context.Context, table Table) ([][]any, error)
}

var (
	_ TableReplacer = (*Store)(nil)
	_ TableReader   = (*Store)(nil)
)

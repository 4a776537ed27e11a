package transitdb

import (
	"context"
	"fmt"
)

type importKind string

const (
	importKindSeed importKind = "seed"
	importKindGTFS importKind = "gtfs"
)

// ImportMetadata describes the most recent successful import.
type ImportMetadata struct {
	FileHash   string
	FileSource string
	Kind       string
	ImportTime int64
}

// GetImportMetadata returns sql.ErrNoRows when nothing has been imported yet.
func (c *Client) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	var m ImportMetadata
	err := c.DB.QueryRowContext(ctx,
		`SELECT file_hash, file_source, import_kind, import_time FROM import_metadata WHERE id = 1`,
	).Scan(&m.FileHash, &m.FileSource, &m.Kind, &m.ImportTime)
	return m, err
}

func (c *Client) setImportMetadata(ctx context.Context, m ImportMetadata) error {
	_, err := c.DB.ExecContext(ctx, `
		INSERT INTO import_metadata (id, file_hash, file_source, import_kind, import_time)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_hash = excluded.file_hash,
			file_source = excluded.file_source,
			import_kind = excluded.import_kind,
			import_time = excluded.import_time`,
		m.FileHash, m.FileSource, m.Kind, m.ImportTime)
	if err != nil {
		return fmt.Errorf("error storing import metadata: %w", err)
	}
	return nil
}

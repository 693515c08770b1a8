package exporter

import (
	"context"

	"mdsexport/pkg/mds"
	"mdsexport/pkg/resumefile"
	"mdsexport/pkg/tokenstore"
)

// Extractor fetches pages from the bulk-extract API. Implementations make a
// single attempt per call; layering retry behavior happens behind this
// interface, not in the pagination loop.
type Extractor interface {
	FetchFirst(ctx context.Context, token string) (*mds.ExtractResponse, error)
	FetchNext(ctx context.Context, nextURL string) (*mds.ExtractResponse, error)
}

// CursorUpdater persists a newly observed cursor after each page.
type CursorUpdater interface {
	UpdateCursor(token string, remaining int) error
}

// StoreUpdater persists cursors into a named token store entry.
type StoreUpdater struct {
	Store *tokenstore.Store
	Name  string
}

func (u StoreUpdater) UpdateCursor(token string, remaining int) error {
	return u.Store.Update(u.Name, token, remaining)
}

// FileUpdater overwrites a flat resume file with the raw cursor text. The
// remaining count is not recorded in this mode.
type FileUpdater struct {
	File *resumefile.File
}

func (u FileUpdater) UpdateCursor(token string, _ int) error {
	return u.File.Save(token)
}

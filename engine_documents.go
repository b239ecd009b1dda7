package nexus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadDocument stores the document bytes under a generated key and
// records the metadata row. Allowed for administrators and the project's
// current lead. The blob key, not the caller-supplied name, is what the
// bytes live under; the name is display metadata only.
func (e *Engine) UploadDocument(ctx context.Context, caller *Principal, projectID, name string, r io.Reader) (*Document, error) {
	if e == nil || e.documents == nil || e.blobs == nil {
		return nil, ErrEngineNotReady
	}
	p, err := e.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanUploadDocument(caller, p) {
		return nil, ErrAccessDenied
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", ErrValidation)
	}

	key := uuid.NewString() + "-" + path.Base(name)
	if err := e.blobs.Put(ctx, key, r); err != nil {
		return nil, e.storeFailure("store document bytes", err)
	}

	doc, err := e.documents.Insert(ctx, &Document{
		Name:       name,
		FilePath:   key,
		UploadedBy: caller.ID,
		ProjectID:  p.ID,
	})
	if err != nil {
		return nil, e.storeFailure("store document metadata", err)
	}
	return doc, nil
}

// ListDocuments returns the project's documents under the same visibility
// rule as viewing the project itself.
func (e *Engine) ListDocuments(ctx context.Context, caller *Principal, projectID string) ([]*Document, error) {
	if e == nil || e.documents == nil {
		return nil, ErrEngineNotReady
	}
	p, err := e.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(caller, p) {
		return nil, ErrNotFound
	}

	docs, err := e.documents.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, e.storeFailure("list documents", err)
	}
	return docs, nil
}

// OpenDocument returns a byte stream for a document the caller may view.
// The caller owns closing the stream.
func (e *Engine) OpenDocument(ctx context.Context, caller *Principal, documentID string) (io.ReadCloser, error) {
	if e == nil || e.documents == nil || e.blobs == nil {
		return nil, ErrEngineNotReady
	}
	doc, err := e.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, e.storeFailure("find document", err)
	}
	p, err := e.findProject(ctx, doc.ProjectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(caller, p) {
		return nil, ErrNotFound
	}

	rc, err := e.blobs.Get(ctx, doc.FilePath)
	if err != nil {
		return nil, e.storeFailure("open document bytes", err)
	}
	return rc, nil
}

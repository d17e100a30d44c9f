package core

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"annexcore/internal/blob"
	"annexcore/pkg/domain"
)

// Attachment key prefixes inside the blob store.
const (
	annexImagePrefix        = "annexes/"
	announcementImagePrefix = "announcements/"
)

// AddAnnex creates a listing. New listings enter moderation as Pending
// unless a status is given.
func (s *Service) AddAnnex(ctx context.Context, annex Annex) (Annex, Result, error) {
	var created Annex
	res, err := s.run(ctx, "create_annex", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateAnnex(annex)
		return created.ID, err
	})
	if err != nil {
		return Annex{}, res, err
	}
	return created, res, nil
}

// UpdateAnnex applies mutator to an existing listing. The moderation status
// only moves through ApproveAnnex and RejectAnnex; a mutator that changes it
// fails with InvalidStateError.
func (s *Service) UpdateAnnex(ctx context.Context, id string, mutator func(*Annex) error) (Annex, Result, error) {
	var updated Annex
	res, err := s.run(ctx, "update_annex", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnex(id, func(a *Annex) error {
			from := a.Status
			if err := mutator(a); err != nil {
				return err
			}
			if a.Status != from {
				return domain.InvalidStateError{Entity: EntityAnnex, ID: id, From: string(from), Action: "set status " + string(a.Status)}
			}
			return nil
		})
		return id, err
	})
	if err != nil {
		return Annex{}, res, err
	}
	return updated, res, nil
}

// DeleteAnnex removes a listing and then, best effort, the photos it owned
// in the blob store.
func (s *Service) DeleteAnnex(ctx context.Context, id string) (Result, error) {
	var removed Annex
	res, err := s.run(ctx, "delete_annex", func(tx Transaction) (string, error) {
		current, ok := tx.FindAnnex(id)
		if !ok {
			return id, notFound(EntityAnnex, id)
		}
		removed = current
		return id, tx.DeleteAnnex(id)
	})
	if err != nil {
		return res, err
	}
	for _, ref := range removed.Images {
		s.dropBlob(ctx, ref, annexImagePrefix)
	}
	return res, nil
}

// GetAnnex returns the listing with the given id.
func (s *Service) GetAnnex(id string) (Annex, error) {
	a, ok := s.store.GetAnnex(id)
	if !ok {
		return Annex{}, notFound(EntityAnnex, id)
	}
	return a, nil
}

// ListAnnexes returns every listing in insertion order.
func (s *Service) ListAnnexes() []Annex { return s.store.ListAnnexes() }

// ApproveAnnex moves a Pending listing to Active.
func (s *Service) ApproveAnnex(ctx context.Context, id string) (Annex, Result, error) {
	return s.moderate(ctx, "approve_annex", "approve", id, domain.AnnexStatusActive)
}

// RejectAnnex moves a Pending listing to Rejected.
func (s *Service) RejectAnnex(ctx context.Context, id string) (Annex, Result, error) {
	return s.moderate(ctx, "reject_annex", "reject", id, domain.AnnexStatusRejected)
}

func (s *Service) moderate(ctx context.Context, op, action, id string, to domain.AnnexStatus) (Annex, Result, error) {
	var updated Annex
	res, err := s.run(ctx, op, func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnex(id, func(a *Annex) error {
			if a.Status != domain.AnnexStatusPending {
				return domain.InvalidStateError{Entity: EntityAnnex, ID: id, From: string(a.Status), Action: action}
			}
			a.Status = to
			return nil
		})
		return id, err
	})
	if err != nil {
		return Annex{}, res, err
	}
	return updated, res, nil
}

// AttachAnnexImage stores a photo in the blob store and appends its key to
// the listing. The blob is removed again when the listing update fails.
func (s *Service) AttachAnnexImage(ctx context.Context, id, filename string, r io.Reader, contentType string) (Annex, Result, error) {
	if s.blobs == nil {
		return Annex{}, Result{}, ErrNoBlobStore
	}
	if _, ok := s.store.GetAnnex(id); !ok {
		return Annex{}, Result{}, notFound(EntityAnnex, id)
	}
	key := annexImagePrefix + id + "/" + s.newKey() + strings.ToLower(path.Ext(filename))
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"annex": id, "filename": path.Base(filename)},
	})
	if err != nil {
		return Annex{}, Result{}, err
	}
	var updated Annex
	res, err := s.run(ctx, "attach_annex_image", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnex(id, func(a *Annex) error {
			a.Images = append(a.Images, info.Key)
			return nil
		})
		return id, err
	})
	if err != nil {
		s.dropBlob(ctx, info.Key, annexImagePrefix)
		return Annex{}, res, err
	}
	return updated, res, nil
}

// RemoveAnnexImage drops an image reference from the listing. Stored photos
// are deleted from the blob store as well; external URLs are only unlinked.
func (s *Service) RemoveAnnexImage(ctx context.Context, id, ref string) (Annex, Result, error) {
	var updated Annex
	res, err := s.run(ctx, "remove_annex_image", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnex(id, func(a *Annex) error {
			kept := make([]string, 0, len(a.Images))
			found := false
			for _, img := range a.Images {
				if img == ref && !found {
					found = true
					continue
				}
				kept = append(kept, img)
			}
			if !found {
				return domain.NewValidationError(EntityAnnex, "images", "no image "+ref)
			}
			a.Images = kept
			return nil
		})
		return id, err
	})
	if err != nil {
		return Annex{}, res, err
	}
	s.dropBlob(ctx, ref, annexImagePrefix)
	return updated, res, nil
}

// AttachmentURL returns a URL through which a stored attachment can be
// fetched. References that are already URLs are returned unchanged.
func (s *Service) AttachmentURL(ctx context.Context, ref string) (string, error) {
	if strings.Contains(ref, "://") {
		return ref, nil
	}
	if s.blobs == nil {
		return "", ErrNoBlobStore
	}
	return s.blobs.PresignURL(ctx, ref, blob.SignedURLOptions{Method: "GET"})
}

// dropBlob deletes a blob owned by the service. Keys outside prefix, such as
// seeded external URLs, are left alone. Failures are logged, not returned.
func (s *Service) dropBlob(ctx context.Context, key, prefix string) {
	if s.blobs == nil || !strings.HasPrefix(key, prefix) {
		return
	}
	if _, err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.Warn("blob cleanup failed", "key", key, "error", err)
	}
}

package core

import (
	"context"
	"io"
	"path"
	"strings"

	"annexcore/internal/blob"
)

// AddAnnouncement publishes an announcement.
func (s *Service) AddAnnouncement(ctx context.Context, a Announcement) (Announcement, Result, error) {
	var created Announcement
	res, err := s.run(ctx, "create_announcement", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateAnnouncement(a)
		return created.ID, err
	})
	if err != nil {
		return Announcement{}, res, err
	}
	return created, res, nil
}

// UpdateAnnouncement applies mutator to an existing announcement.
func (s *Service) UpdateAnnouncement(ctx context.Context, id string, mutator func(*Announcement) error) (Announcement, Result, error) {
	var updated Announcement
	res, err := s.run(ctx, "update_announcement", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnouncement(id, mutator)
		return id, err
	})
	if err != nil {
		return Announcement{}, res, err
	}
	return updated, res, nil
}

// DeleteAnnouncement removes an announcement and its stored image.
func (s *Service) DeleteAnnouncement(ctx context.Context, id string) (Result, error) {
	var imageKey string
	res, err := s.run(ctx, "delete_announcement", func(tx Transaction) (string, error) {
		current, ok := tx.Snapshot().FindAnnouncement(id)
		if !ok {
			return id, notFound(EntityAnnouncement, id)
		}
		imageKey = current.ImageKey
		return id, tx.DeleteAnnouncement(id)
	})
	if err != nil {
		return res, err
	}
	s.dropBlob(ctx, imageKey, announcementImagePrefix)
	return res, nil
}

// GetAnnouncement returns the announcement with the given id.
func (s *Service) GetAnnouncement(id string) (Announcement, error) {
	a, ok := s.store.GetAnnouncement(id)
	if !ok {
		return Announcement{}, notFound(EntityAnnouncement, id)
	}
	return a, nil
}

// ListAnnouncements returns every announcement in insertion order.
func (s *Service) ListAnnouncements() []Announcement { return s.store.ListAnnouncements() }

// AttachAnnouncementImage stores an image and makes it the announcement's
// image, replacing and deleting any previously stored one.
func (s *Service) AttachAnnouncementImage(ctx context.Context, id, filename string, r io.Reader, contentType string) (Announcement, Result, error) {
	if s.blobs == nil {
		return Announcement{}, Result{}, ErrNoBlobStore
	}
	if _, ok := s.store.GetAnnouncement(id); !ok {
		return Announcement{}, Result{}, notFound(EntityAnnouncement, id)
	}
	key := announcementImagePrefix + id + "/" + s.newKey() + strings.ToLower(path.Ext(filename))
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"announcement": id, "filename": path.Base(filename)},
	})
	if err != nil {
		return Announcement{}, Result{}, err
	}
	var previous string
	var updated Announcement
	res, err := s.run(ctx, "attach_announcement_image", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnouncement(id, func(a *Announcement) error {
			previous = a.ImageKey
			a.ImageKey = info.Key
			a.ImageURL = info.URL
			return nil
		})
		return id, err
	})
	if err != nil {
		s.dropBlob(ctx, info.Key, announcementImagePrefix)
		return Announcement{}, res, err
	}
	s.dropBlob(ctx, previous, announcementImagePrefix)
	return updated, res, nil
}

// ClearAnnouncementImage removes the image from an announcement.
func (s *Service) ClearAnnouncementImage(ctx context.Context, id string) (Announcement, Result, error) {
	var previous string
	var updated Announcement
	res, err := s.run(ctx, "clear_announcement_image", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateAnnouncement(id, func(a *Announcement) error {
			previous = a.ImageKey
			a.ImageKey = ""
			a.ImageURL = ""
			return nil
		})
		return id, err
	})
	if err != nil {
		return Announcement{}, res, err
	}
	s.dropBlob(ctx, previous, announcementImagePrefix)
	return updated, res, nil
}

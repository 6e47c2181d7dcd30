package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

// ArchiveService is the append-only record of superseded post content.
type ArchiveService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewArchiveService creates an ArchiveService instance.
func NewArchiveService(gdb *gorm.DB, log *logrus.Logger) *ArchiveService {
	return &ArchiveService{db: gdb, log: logging.OrDefault(log)}
}

// WithTx returns a copy of the service bound to tx.
func (s *ArchiveService) WithTx(tx *gorm.DB) *ArchiveService {
	clone := *s
	clone.db = tx
	return &clone
}

// Archive appends a snapshot for id. Every call writes a new entry.
func (s *ArchiveService) Archive(ctx context.Context, id db.PostID, snapshot db.PostSnapshot) (*db.ArchiveEntry, error) {
	data, err := snapshot.Encode()
	if err != nil {
		return nil, err
	}

	entry := db.ArchiveEntry{
		PostID:      id,
		Data:        data,
		ContentHash: db.HashContent(data),
		ArchivedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"post": id.String(),
		"seq":  entry.Seq,
		"hash": entry.ContentHash[:12],
	}).Debug("archived post snapshot")
	return &entry, nil
}

// History returns every entry for id in the order it was archived. The post
// itself may no longer exist.
func (s *ArchiveService) History(ctx context.Context, id db.PostID) ([]db.ArchiveEntry, error) {
	var entries []db.ArchiveEntry
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Order("seq asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Latest returns the most recently archived entry for id.
func (s *ArchiveService) Latest(ctx context.Context, id db.PostID) (*db.ArchiveEntry, error) {
	var entry db.ArchiveEntry
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Order("seq desc").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArchiveNotFound
		}
		return nil, err
	}
	return &entry, nil
}

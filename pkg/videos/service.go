package videos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"pureplay/pkg/auth"
	"pureplay/pkg/models"
	"pureplay/pkg/oembed"
	"pureplay/pkg/store"
)

var (
	ErrInvalidURL     = errors.New("url is empty or malformed")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateVideo = errors.New("this video is already added to your list")
	ErrMetadataFetch  = errors.New("failed to fetch video details, please check the url")
	ErrNotFound       = errors.New("no video found for the user")
)

// Mirror archives a thumbnail and returns the archived URL.
type Mirror interface {
	Mirror(ctx context.Context, srcURL string) (string, error)
}

// Service implements video ingest and the per-owner catalog. Every
// operation resolves the caller from the auth context and filters by owner,
// so one user's requests can never touch another's rows.
type Service struct {
	users    *store.Users
	videos   *store.Videos
	resolver oembed.Resolver
	mirror   Mirror
}

// NewService wires the ingest pipeline. mirror may be nil to disable
// thumbnail archiving.
func NewService(users *store.Users, videos *store.Videos, resolver oembed.Resolver, mirror Mirror) *Service {
	return &Service{users: users, videos: videos, resolver: resolver, mirror: mirror}
}

// Add validates the URL, dedups it against the caller's list, resolves
// display metadata, and persists the row. Metadata failure persists
// nothing; the step is all-or-nothing.
func (s *Service) Add(ctx context.Context, caller *auth.Context, rawURL string) (*models.Video, error) {
	if !validVideoURL(rawURL) {
		return nil, ErrInvalidURL
	}

	user, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, caller.Email)
	}

	exists, err := s.videos.Exists(ctx, user.ID, rawURL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateVideo
	}

	meta, err := s.resolver.Resolve(ctx, rawURL)
	if err != nil {
		slog.Warn("metadata resolve failed", "url", rawURL, "err", err)
		return nil, ErrMetadataFetch
	}

	thumbnail := meta.ThumbnailURL
	if s.mirror != nil && thumbnail != "" {
		// Mirror failure keeps the original URL; archiving is best effort.
		if mirrored, err := s.mirror.Mirror(ctx, thumbnail); err != nil {
			slog.Warn("thumbnail mirror failed", "url", thumbnail, "err", err)
		} else {
			thumbnail = mirrored
		}
	}

	video := &models.Video{
		UserID:       user.ID,
		VideoURL:     rawURL,
		Title:        meta.Title,
		AuthorName:   meta.AuthorName,
		ThumbnailURL: thumbnail,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		// A concurrent add of the same URL can slip past the existence
		// check; the unique index turns it into a duplicate, not a second row.
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateVideo
		}
		return nil, err
	}
	return video, nil
}

// List returns all of the caller's videos in insertion order. An empty
// list is a successful result.
func (s *Service) List(ctx context.Context, caller *auth.Context) ([]models.Video, error) {
	user, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, caller.Email)
	}
	return s.videos.ListByUser(ctx, user.ID)
}

// GetByID re-checks ownership even though the id determines the row, so a
// guessed id never reads another user's video.
func (s *Service) GetByID(ctx context.Context, caller *auth.Context, id uint) (*models.Video, error) {
	user, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, caller.Email)
	}

	video, err := s.videos.GetOwned(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrNotFound
	}
	return video, nil
}

// Delete removes the caller's video. Deleting an absent or other-owned id
// is ErrNotFound, never a crash.
func (s *Service) Delete(ctx context.Context, caller *auth.Context, id uint) error {
	user, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, caller.Email)
	}

	deleted, err := s.videos.DeleteOwned(ctx, user.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func validVideoURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

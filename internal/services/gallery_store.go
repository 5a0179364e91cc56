package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrStoreNotLoaded     = errors.New("gallery store not loaded")
	ErrStoreAlreadyLoaded = errors.New("gallery store already loaded")
)

// ChangeType names a store mutation
type ChangeType string

const (
	ChangeStoreLoaded           ChangeType = "store_loaded"
	ChangePhotoAdded            ChangeType = "photo_added"
	ChangePhotoDeleted          ChangeType = "photo_deleted"
	ChangeFavoriteToggled       ChangeType = "favorite_toggled"
	ChangeAlbumAdded            ChangeType = "album_added"
	ChangeAlbumUpdated          ChangeType = "album_updated"
	ChangeAlbumDeleted          ChangeType = "album_deleted"
	ChangePhotoAddedToAlbum     ChangeType = "album_photo_added"
	ChangePhotoRemovedFromAlbum ChangeType = "album_photo_removed"
)

// ChangeEvent is delivered to subscribers after a mutation is applied
type ChangeEvent struct {
	Type    ChangeType `json:"type"`
	PhotoID int64      `json:"photoId,omitempty"`
	AlbumID int64      `json:"albumId,omitempty"`
}

// StoreOption configures a PhotoAlbumStore
type StoreOption func(*PhotoAlbumStore)

// WithIDGenerator replaces the default clock-based id generator
func WithIDGenerator(ids IDGenerator) StoreOption {
	return func(s *PhotoAlbumStore) { s.ids = ids }
}

// WithMetrics records store metrics
func WithMetrics(m *observability.GalleryMetrics) StoreOption {
	return func(s *PhotoAlbumStore) { s.metrics = m }
}

// WithLogger replaces the default logger
func WithLogger(l *observability.Logger) StoreOption {
	return func(s *PhotoAlbumStore) { s.logger = l }
}

// WithWriteTimeout bounds each storage write
func WithWriteTimeout(d time.Duration) StoreOption {
	return func(s *PhotoAlbumStore) { s.writeTimeout = d }
}

// PhotoAlbumStore owns the photos, favorites and albums of one gallery
// profile. All mutations go through it and it is the only writer of the
// key-value store. Reads after a mutation returns always see that mutation.
type PhotoAlbumStore struct {
	mu           sync.RWMutex
	kv           repository.KeyValueStore
	ids          IDGenerator
	metrics      *observability.GalleryMetrics
	logger       *observability.Logger
	writeTimeout time.Duration

	loaded    bool
	photos    []models.Photo
	favorites []int64 // photo ids in favoriting order
	albums    []models.Album

	subMu       sync.Mutex
	subscribers map[int]func(ChangeEvent)
	nextSubID   int
}

// NewPhotoAlbumStore creates an unloaded store backed by kv. Call Load
// before any mutation.
func NewPhotoAlbumStore(kv repository.KeyValueStore, opts ...StoreOption) *PhotoAlbumStore {
	s := &PhotoAlbumStore{
		kv:           kv,
		ids:          NewClockIDGenerator(nil),
		logger:       observability.GetLogger(),
		writeTimeout: 5 * time.Second,
		subscribers:  make(map[int]func(ChangeEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "gallery_store")
	return s
}

// Subscribe registers fn to receive every change event. The returned
// function removes the subscription.
func (s *PhotoAlbumStore) Subscribe(fn func(ChangeEvent)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *PhotoAlbumStore) publish(ev ChangeEvent) {
	s.subMu.Lock()
	subs := make([]func(ChangeEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Load reads the three collections from storage. Missing or unreadable
// photos and albums fall back to the seed data, favorites to empty. The
// result is repaired so every cross-reference is valid, and written back
// when anything had to be seeded or repaired. A failed read suppresses the
// write-back so the stored blobs are left untouched.
func (s *PhotoAlbumStore) Load(ctx context.Context) error {
	ctx, span := observability.StartServiceSpan(ctx, "PhotoAlbumStore", "Load")
	defer span.End()

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		observability.RecordError(span, ErrStoreAlreadyLoaded)
		return ErrStoreAlreadyLoaded
	}

	photos, photosStatus := readCollection[[]models.Photo](ctx, s, repository.KeyPhotos)
	if photosStatus != readOK {
		photos = models.SeedPhotos()
	}
	albums, albumsStatus := readCollection[[]models.Album](ctx, s, repository.KeyAlbums)
	if albumsStatus != readOK {
		albums = models.SeedAlbums()
	}
	storedFavorites, favoritesStatus := readCollection[[]models.Photo](ctx, s, repository.KeyFavorites)

	repaired := s.reconcile(photos, albums, storedFavorites)
	s.loaded = true

	statuses := []readStatus{photosStatus, albumsStatus, favoritesStatus}
	switch {
	case slices.Contains(statuses, readFailed):
		s.logger.WithContext(ctx).Warn("Storage read failed, keeping defaults in memory only")
	case slices.ContainsFunc(statuses, func(st readStatus) bool { return st != readOK }) || repaired:
		s.persistLocked(ctx)
	}
	s.recordSizesLocked(ctx)

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"photos":    len(s.photos),
		"albums":    len(s.albums),
		"favorites": len(s.favorites),
		"repaired":  repaired,
	}).Info("Gallery store loaded")
	s.mu.Unlock()

	observability.SetSuccess(span)
	s.publish(ChangeEvent{Type: ChangeStoreLoaded})
	return nil
}

type readStatus int

const (
	readOK readStatus = iota
	readMissing
	readCorrupt
	readFailed
)

// readCollection decodes one storage key and reports how the read went.
// Anything but readOK leaves out as the zero value.
func readCollection[T any](ctx context.Context, s *PhotoAlbumStore, key string) (T, readStatus) {
	var out T

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.loadFallback(ctx, key, "read_error", &models.StorageError{Op: "read", Key: key, Err: err})
		return out, readFailed
	}
	if !found {
		s.loadFallback(ctx, key, "missing", nil)
		return out, readMissing
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.loadFallback(ctx, key, "corrupt", &models.StorageError{Op: "decode", Key: key, Err: err})
		var zero T
		return zero, readCorrupt
	}
	return out, readOK
}

func (s *PhotoAlbumStore) loadFallback(ctx context.Context, key, reason string, err error) {
	logger := s.logger.WithContext(ctx).WithField("key", key)
	if err != nil {
		logger.Warnf("Falling back to default data: %v", err)
	} else {
		logger.Debug("No stored data, using defaults")
	}
	observability.AddEvent(trace.SpanFromContext(ctx), "load_fallback",
		observability.StorageKey(key),
		attribute.String("reason", reason),
	)
	if s.metrics != nil {
		s.metrics.RecordLoadFallback(ctx, key, reason)
	}
}

// reconcile installs the loaded collections, dropping duplicates and
// dangling references. It reports whether anything had to change.
func (s *PhotoAlbumStore) reconcile(photos []models.Photo, albums []models.Album, storedFavorites []models.Photo) bool {
	repaired := false

	s.albums = make([]models.Album, 0, len(albums))
	albumSeen := make(map[int64]bool, len(albums))
	for _, a := range albums {
		if albumSeen[a.ID] {
			repaired = true
			continue
		}
		albumSeen[a.ID] = true
		s.albums = append(s.albums, a.Clone())
		s.ids.Observe(a.ID)
	}

	s.photos = make([]models.Photo, 0, len(photos))
	photoSeen := make(map[int64]bool, len(photos))
	for _, p := range photos {
		if photoSeen[p.ID] {
			repaired = true
			continue
		}
		photoSeen[p.ID] = true

		p = p.Clone()
		if !models.IsValidPhotoSize(string(p.Size)) {
			p.Size = models.SizeRegular
			repaired = true
		}
		kept := make([]int64, 0, len(p.AlbumIDs))
		for _, id := range p.AlbumIDs {
			if albumSeen[id] && !slices.Contains(kept, id) {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(p.AlbumIDs) {
			repaired = true
		}
		p.AlbumIDs = kept

		s.photos = append(s.photos, p)
		s.ids.Observe(p.ID)
	}

	for i := range s.albums {
		if c := s.albums[i].CoverPhotoID; c != nil && !photoSeen[*c] {
			s.albums[i].CoverPhotoID = nil
			repaired = true
		}
	}

	// The photo flag is authoritative; the favorites blob only
	// contributes ordering.
	s.favorites = make([]int64, 0, len(storedFavorites))
	for _, f := range storedFavorites {
		idx := s.photoIndex(f.ID)
		if idx < 0 || !s.photos[idx].Favorite || slices.Contains(s.favorites, f.ID) {
			repaired = true
			continue
		}
		s.favorites = append(s.favorites, f.ID)
	}
	for _, p := range s.photos {
		if p.Favorite && !slices.Contains(s.favorites, p.ID) {
			s.favorites = append(s.favorites, p.ID)
			repaired = true
		}
	}

	return repaired
}

// mutate runs fn under the write lock. fn returns the event to publish,
// or nil when nothing changed. State is persisted after every change.
func (s *PhotoAlbumStore) mutate(ctx context.Context, op string, fn func() (*ChangeEvent, error)) error {
	ctx, span := observability.StartServiceSpan(ctx, "PhotoAlbumStore", op)
	defer span.End()

	s.mu.Lock()
	var ev *ChangeEvent
	var err error
	if !s.loaded {
		err = ErrStoreNotLoaded
	} else {
		ev, err = fn()
	}
	if err == nil && ev != nil {
		s.persistLocked(ctx)
		s.recordSizesLocked(ctx)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordMutation(ctx, op, err)
	}
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	observability.SetSuccess(span)

	if ev != nil {
		if ev.PhotoID != 0 {
			span.SetAttributes(observability.PhotoID(ev.PhotoID))
		}
		if ev.AlbumID != 0 {
			span.SetAttributes(observability.AlbumID(ev.AlbumID))
		}
		s.publish(*ev)
	}
	return nil
}

// persistLocked writes all three collections, empty ones included.
// Failures are logged and counted; the in-memory state stays authoritative.
func (s *PhotoAlbumStore) persistLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	s.writeKey(ctx, repository.KeyPhotos, s.photos)
	s.writeKey(ctx, repository.KeyFavorites, s.favoritesLocked())
	s.writeKey(ctx, repository.KeyAlbums, s.albums)
}

func (s *PhotoAlbumStore) writeKey(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err == nil {
		err = s.kv.Set(ctx, key, string(data))
	}
	if err != nil {
		serr := &models.StorageError{Op: "write", Key: key, Err: err}
		s.logger.WithContext(ctx).WithField("key", key).Errorf("Failed to persist collection: %v", serr)
		if s.metrics != nil {
			s.metrics.RecordPersistFailure(ctx, key)
		}
	}
}

func (s *PhotoAlbumStore) recordSizesLocked(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordSizes(ctx, len(s.photos), len(s.albums), len(s.favorites))
	}
}

func (s *PhotoAlbumStore) photoIndex(id int64) int {
	return slices.IndexFunc(s.photos, func(p models.Photo) bool { return p.ID == id })
}

func (s *PhotoAlbumStore) albumIndex(id int64) int {
	return slices.IndexFunc(s.albums, func(a models.Album) bool { return a.ID == id })
}

func (s *PhotoAlbumStore) favoritesLocked() []models.Photo {
	out := make([]models.Photo, 0, len(s.favorites))
	for _, id := range s.favorites {
		if idx := s.photoIndex(id); idx >= 0 {
			out = append(out, s.photos[idx].Clone())
		}
	}
	return out
}

// ListPhotos returns every photo in insertion order
func (s *PhotoAlbumStore) ListPhotos() []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Photo, 0, len(s.photos))
	for _, p := range s.photos {
		out = append(out, p.Clone())
	}
	return out
}

// ListFavorites returns the favorited photos in the order they were favorited
func (s *PhotoAlbumStore) ListFavorites() []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favoritesLocked()
}

// ListAlbums returns every album in insertion order
func (s *PhotoAlbumStore) ListAlbums() []models.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Album, 0, len(s.albums))
	for _, a := range s.albums {
		out = append(out, a.Clone())
	}
	return out
}

// GetPhotoByID returns the photo with the given id
func (s *PhotoAlbumStore) GetPhotoByID(id int64) (models.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.photoIndex(id)
	if idx < 0 {
		return models.Photo{}, false
	}
	return s.photos[idx].Clone(), true
}

// GetAlbumByID returns the album with the given id
func (s *PhotoAlbumStore) GetAlbumByID(id int64) (models.Album, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.albumIndex(id)
	if idx < 0 {
		return models.Album{}, false
	}
	return s.albums[idx].Clone(), true
}

// GetPhotosByAlbumID returns the album's photos in photo insertion order
func (s *PhotoAlbumStore) GetPhotosByAlbumID(albumID int64) []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.photosInAlbumLocked(albumID)
}

func (s *PhotoAlbumStore) photosInAlbumLocked(albumID int64) []models.Photo {
	out := []models.Photo{}
	for _, p := range s.photos {
		if p.InAlbum(albumID) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// AlbumCover returns the album's cover photo, or its first photo when no
// cover is set.
func (s *PhotoAlbumStore) AlbumCover(albumID int64) (models.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.albumIndex(albumID)
	if idx < 0 {
		return models.Photo{}, false
	}
	return s.albumCoverLocked(s.albums[idx])
}

func (s *PhotoAlbumStore) albumCoverLocked(album models.Album) (models.Photo, bool) {
	if album.CoverPhotoID != nil {
		if idx := s.photoIndex(*album.CoverPhotoID); idx >= 0 {
			return s.photos[idx].Clone(), true
		}
	}
	for _, p := range s.photos {
		if p.InAlbum(album.ID) {
			return p.Clone(), true
		}
	}
	return models.Photo{}, false
}

// ListAlbumSummaries returns every album with its photo count and cover
func (s *PhotoAlbumStore) ListAlbumSummaries() []models.AlbumSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlbumSummary, 0, len(s.albums))
	for _, a := range s.albums {
		summary := models.AlbumSummary{
			Album:      a.Clone(),
			PhotoCount: len(s.photosInAlbumLocked(a.ID)),
		}
		if cover, ok := s.albumCoverLocked(a); ok {
			summary.Cover = &cover
		}
		out = append(out, summary)
	}
	return out
}

// Loaded reports whether Load has completed
func (s *PhotoAlbumStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Counts returns the collection sizes
func (s *PhotoAlbumStore) Counts() (photos, albums, favorites int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos), len(s.albums), len(s.favorites)
}

// AddPhoto validates input and appends a new regular-size photo
func (s *PhotoAlbumStore) AddPhoto(ctx context.Context, input models.NewPhotoInput) (models.Photo, error) {
	var created models.Photo
	err := s.mutate(ctx, "AddPhoto", func() (*ChangeEvent, error) {
		if err := input.Validate(); err != nil {
			return nil, err
		}
		photo, err := models.NewPhoto(s.ids.NextID(), input)
		if err != nil {
			return nil, err
		}
		s.photos = append(s.photos, *photo)
		created = photo.Clone()
		return &ChangeEvent{Type: ChangePhotoAdded, PhotoID: photo.ID}, nil
	})
	return created, err
}

// ToggleFavorite flips the photo's favorite flag and returns the updated photo
func (s *PhotoAlbumStore) ToggleFavorite(ctx context.Context, id int64) (models.Photo, error) {
	var updated models.Photo
	err := s.mutate(ctx, "ToggleFavorite", func() (*ChangeEvent, error) {
		idx := s.photoIndex(id)
		if idx < 0 {
			return nil, models.ErrPhotoNotFound
		}

		p := &s.photos[idx]
		p.Favorite = !p.Favorite
		if p.Favorite {
			s.favorites = append(s.favorites, id)
		} else {
			s.favorites = slices.DeleteFunc(s.favorites, func(f int64) bool { return f == id })
		}

		updated = p.Clone()
		return &ChangeEvent{Type: ChangeFavoriteToggled, PhotoID: id}, nil
	})
	return updated, err
}

// DeletePhoto removes the photo from photos and favorites and clears any
// album cover pointing at it.
func (s *PhotoAlbumStore) DeletePhoto(ctx context.Context, id int64) error {
	return s.mutate(ctx, "DeletePhoto", func() (*ChangeEvent, error) {
		idx := s.photoIndex(id)
		if idx < 0 {
			return nil, models.ErrPhotoNotFound
		}

		s.photos = slices.Delete(s.photos, idx, idx+1)
		s.favorites = slices.DeleteFunc(s.favorites, func(f int64) bool { return f == id })
		for i := range s.albums {
			if s.albums[i].HasCover(id) {
				s.albums[i].CoverPhotoID = nil
			}
		}
		return &ChangeEvent{Type: ChangePhotoDeleted, PhotoID: id}, nil
	})
}

// AddAlbum validates input and appends a new album
func (s *PhotoAlbumStore) AddAlbum(ctx context.Context, input models.NewAlbumInput) (models.Album, error) {
	var created models.Album
	err := s.mutate(ctx, "AddAlbum", func() (*ChangeEvent, error) {
		if strings.TrimSpace(input.Name) == "" {
			return nil, models.ErrAlbumNameRequired
		}
		// validated above so a rejected album does not consume an id
		album, err := models.NewAlbum(s.ids.NextID(), input)
		if err != nil {
			return nil, err
		}
		s.albums = append(s.albums, *album)
		created = album.Clone()
		return &ChangeEvent{Type: ChangeAlbumAdded, AlbumID: album.ID}, nil
	})
	return created, err
}

// UpdateAlbum replaces the stored album with the same id. The whole record
// is written; fields left empty in album are cleared.
func (s *PhotoAlbumStore) UpdateAlbum(ctx context.Context, album models.Album) (models.Album, error) {
	var updated models.Album
	err := s.mutate(ctx, "UpdateAlbum", func() (*ChangeEvent, error) {
		idx := s.albumIndex(album.ID)
		if idx < 0 {
			return nil, models.ErrAlbumNotFound
		}
		if err := album.Validate(); err != nil {
			return nil, err
		}
		if album.CoverPhotoID != nil && s.photoIndex(*album.CoverPhotoID) < 0 {
			return nil, models.ErrAlbumCoverNotFound
		}

		replacement := album.Clone()
		replacement.Name = strings.TrimSpace(replacement.Name)
		if replacement.Description != nil && strings.TrimSpace(*replacement.Description) == "" {
			replacement.Description = nil
		}
		s.albums[idx] = replacement

		updated = replacement.Clone()
		return &ChangeEvent{Type: ChangeAlbumUpdated, AlbumID: album.ID}, nil
	})
	return updated, err
}

// DeleteAlbum removes the album and drops it from every photo's album list
func (s *PhotoAlbumStore) DeleteAlbum(ctx context.Context, id int64) error {
	return s.mutate(ctx, "DeleteAlbum", func() (*ChangeEvent, error) {
		idx := s.albumIndex(id)
		if idx < 0 {
			return nil, models.ErrAlbumNotFound
		}

		s.albums = slices.Delete(s.albums, idx, idx+1)
		for i := range s.photos {
			s.photos[i].AlbumIDs = slices.DeleteFunc(s.photos[i].AlbumIDs, func(a int64) bool { return a == id })
		}
		return &ChangeEvent{Type: ChangeAlbumDeleted, AlbumID: id}, nil
	})
}

// AddPhotoToAlbum adds the photo to the album. Adding an existing
// association succeeds without changing anything.
func (s *PhotoAlbumStore) AddPhotoToAlbum(ctx context.Context, photoID, albumID int64) error {
	return s.mutate(ctx, "AddPhotoToAlbum", func() (*ChangeEvent, error) {
		pIdx := s.photoIndex(photoID)
		if pIdx < 0 {
			return nil, models.ErrPhotoNotFound
		}
		if s.albumIndex(albumID) < 0 {
			return nil, models.ErrAlbumNotFound
		}

		p := &s.photos[pIdx]
		if p.InAlbum(albumID) {
			return nil, nil
		}
		p.AlbumIDs = append(p.AlbumIDs, albumID)
		return &ChangeEvent{Type: ChangePhotoAddedToAlbum, PhotoID: photoID, AlbumID: albumID}, nil
	})
}

// RemovePhotoFromAlbum removes the photo from the album and clears the
// album cover if it was this photo.
func (s *PhotoAlbumStore) RemovePhotoFromAlbum(ctx context.Context, photoID, albumID int64) error {
	return s.mutate(ctx, "RemovePhotoFromAlbum", func() (*ChangeEvent, error) {
		pIdx := s.photoIndex(photoID)
		if pIdx < 0 {
			return nil, models.ErrPhotoNotFound
		}
		aIdx := s.albumIndex(albumID)
		if aIdx < 0 {
			return nil, models.ErrAlbumNotFound
		}

		p := &s.photos[pIdx]
		if !p.InAlbum(albumID) {
			return nil, models.ErrPhotoNotInAlbum
		}
		p.AlbumIDs = slices.DeleteFunc(p.AlbumIDs, func(a int64) bool { return a == albumID })
		if s.albums[aIdx].HasCover(photoID) {
			s.albums[aIdx].CoverPhotoID = nil
		}
		return &ChangeEvent{Type: ChangePhotoRemovedFromAlbum, PhotoID: photoID, AlbumID: albumID}, nil
	})
}

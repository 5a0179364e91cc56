package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingKV reads from an inner store but rejects every write
type failingKV struct {
	inner  repository.KeyValueStore
	mu     sync.Mutex
	writes int
}

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	return f.inner.Get(ctx, key)
}

func (f *failingKV) Set(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	return errors.New("quota exceeded")
}

// unreadableKV fails reads of one key until healed
type unreadableKV struct {
	repository.KeyValueStore
	key    string
	broken bool
}

func (u *unreadableKV) Get(ctx context.Context, key string) (string, bool, error) {
	if u.broken && key == u.key {
		return "", false, errors.New("connection reset by peer")
	}
	return u.KeyValueStore.Get(ctx, key)
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.UnixMilli(1_000_000) }
}

func newLoadedStore(t *testing.T, kv repository.KeyValueStore) *PhotoAlbumStore {
	t.Helper()
	store := NewPhotoAlbumStore(kv, WithIDGenerator(NewClockIDGenerator(fixedClock())))
	require.NoError(t, store.Load(context.Background()))
	return store
}

func putJSON(t *testing.T, kv repository.KeyValueStore, key string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), key, string(data)))
}

func readJSON(t *testing.T, kv repository.KeyValueStore, key string, v interface{}) {
	t.Helper()
	raw, ok, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "key %s not persisted", key)
	require.NoError(t, json.Unmarshal([]byte(raw), v))
}

func photoIDs(photos []models.Photo) []int64 {
	ids := make([]int64, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPhotoAlbumStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds a fresh profile and persists it", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		store := newLoadedStore(t, kv)

		assert.Len(t, store.ListPhotos(), 10)
		assert.Len(t, store.ListAlbums(), 2)
		assert.Empty(t, store.ListFavorites())

		var stored []models.Photo
		readJSON(t, kv, repository.KeyPhotos, &stored)
		assert.Len(t, stored, 10)
		var favorites []models.Photo
		readJSON(t, kv, repository.KeyFavorites, &favorites)
		assert.Empty(t, favorites)
	})

	t.Run("restores persisted state", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		putJSON(t, kv, repository.KeyPhotos, []models.Photo{
			{ID: 50, Title: "Kept", URL: "u", Size: models.SizeTall, Favorite: true, AlbumIDs: []int64{7}},
		})
		putJSON(t, kv, repository.KeyAlbums, []models.Album{{ID: 7, Name: "Trips"}})
		putJSON(t, kv, repository.KeyFavorites, []models.Photo{{ID: 50, Title: "Kept", URL: "u", Favorite: true}})

		store := newLoadedStore(t, kv)

		photos := store.ListPhotos()
		require.Len(t, photos, 1)
		assert.Equal(t, "Kept", photos[0].Title)
		assert.Equal(t, models.SizeTall, photos[0].Size)
		assert.Equal(t, []int64{7}, photos[0].AlbumIDs)
		assert.Equal(t, []int64{50}, photoIDs(store.ListFavorites()))
	})

	t.Run("falls back on unparsable blobs", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, repository.KeyPhotos, "{not json"))
		require.NoError(t, kv.Set(ctx, repository.KeyAlbums, "[1,2"))
		require.NoError(t, kv.Set(ctx, repository.KeyFavorites, "null?"))

		store := newLoadedStore(t, kv)

		assert.Len(t, store.ListPhotos(), 10)
		assert.Len(t, store.ListAlbums(), 2)
		assert.Empty(t, store.ListFavorites())

		var stored []models.Photo
		readJSON(t, kv, repository.KeyPhotos, &stored)
		assert.Len(t, stored, 10, "repaired state written back")
	})

	t.Run("repairs inconsistent blobs", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		missing := int64(404)
		putJSON(t, kv, repository.KeyPhotos, []models.Photo{
			{ID: 1, Title: "a", URL: "u", AlbumIDs: []int64{1, 1, 99}},
			{ID: 1, Title: "duplicate", URL: "u"},
			{ID: 2, Title: "b", URL: "u", Size: "huge", Favorite: true},
		})
		putJSON(t, kv, repository.KeyAlbums, []models.Album{{ID: 1, Name: "x", CoverPhotoID: &missing}})
		putJSON(t, kv, repository.KeyFavorites, []models.Photo{{ID: 1}, {ID: 77}})

		store := newLoadedStore(t, kv)

		photos := store.ListPhotos()
		require.Len(t, photos, 2)
		assert.Equal(t, "a", photos[0].Title)
		assert.Equal(t, []int64{1}, photos[0].AlbumIDs)
		assert.Equal(t, models.SizeRegular, photos[0].Size)
		assert.Equal(t, models.SizeRegular, photos[1].Size)

		album, ok := store.GetAlbumByID(1)
		require.True(t, ok)
		assert.Nil(t, album.CoverPhotoID)

		assert.Equal(t, []int64{2}, photoIDs(store.ListFavorites()))

		var stored []models.Photo
		readJSON(t, kv, repository.KeyPhotos, &stored)
		assert.Len(t, stored, 2)
	})

	t.Run("read errors never overwrite stored blobs", func(t *testing.T) {
		mem := repository.NewMemoryKV()
		putJSON(t, mem, repository.KeyPhotos, []models.Photo{
			{ID: 500, Title: "Mine", URL: "u", Size: models.SizeWide, AlbumIDs: []int64{70}},
		})
		putJSON(t, mem, repository.KeyAlbums, []models.Album{{ID: 70, Name: "Holidays"}})
		putJSON(t, mem, repository.KeyFavorites, []models.Photo{})
		kv := &unreadableKV{KeyValueStore: mem, key: repository.KeyPhotos, broken: true}

		store := newLoadedStore(t, kv)
		assert.Len(t, store.ListPhotos(), 10, "seed kept in memory")

		var stored []models.Photo
		readJSON(t, mem, repository.KeyPhotos, &stored)
		require.Len(t, stored, 1)
		assert.Equal(t, int64(500), stored[0].ID)

		var albums []models.Album
		readJSON(t, mem, repository.KeyAlbums, &albums)
		assert.Equal(t, []models.Album{{ID: 70, Name: "Holidays"}}, albums)

		kv.broken = false
		recovered := newLoadedStore(t, kv)
		assert.Equal(t, []int64{500}, photoIDs(recovered.ListPhotos()))
		assert.Equal(t, []int64{70}, recovered.ListPhotos()[0].AlbumIDs)
	})

	t.Run("reloading seeded storage is stable", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		first := newLoadedStore(t, kv)
		second := newLoadedStore(t, kv)

		assert.Equal(t, first.ListPhotos(), second.ListPhotos())
		assert.Equal(t, first.ListAlbums(), second.ListAlbums())
		assert.Equal(t, first.ListFavorites(), second.ListFavorites())
	})

	t.Run("second load fails", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		assert.ErrorIs(t, store.Load(ctx), ErrStoreAlreadyLoaded)
	})

	t.Run("mutations before load fail", func(t *testing.T) {
		store := NewPhotoAlbumStore(repository.NewMemoryKV())

		_, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "x", URL: "u"})
		assert.ErrorIs(t, err, ErrStoreNotLoaded)
		assert.ErrorIs(t, store.DeleteAlbum(ctx, 1), ErrStoreNotLoaded)
		assert.Empty(t, store.ListPhotos())
	})
}

func TestPhotoAlbumStore_AddPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("appends a regular photo with a fresh id", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		photo, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "Beach", URL: "data:image/png;base64,AA"})
		require.NoError(t, err)

		assert.Equal(t, models.SizeRegular, photo.Size)
		assert.False(t, photo.Favorite)
		assert.Empty(t, photo.AlbumIDs)

		photos := store.ListPhotos()
		require.Len(t, photos, 11)
		assert.Equal(t, photo.ID, photos[10].ID)
	})

	t.Run("ids stay unique within one millisecond", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		seen := map[int64]bool{}
		for _, p := range store.ListPhotos() {
			seen[p.ID] = true
		}
		for i := 0; i < 5; i++ {
			photo, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "p", URL: "u"})
			require.NoError(t, err)
			assert.False(t, seen[photo.ID], "id %d reused", photo.ID)
			seen[photo.ID] = true
		}
		album, err := store.AddAlbum(ctx, models.NewAlbumInput{Name: "a"})
		require.NoError(t, err)
		assert.False(t, seen[album.ID])
	})

	t.Run("rejects invalid input without changing state", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		store := newLoadedStore(t, kv)

		_, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "  ", URL: "u"})
		assert.ErrorIs(t, err, models.ErrPhotoTitleRequired)
		_, err = store.AddPhoto(ctx, models.NewPhotoInput{Title: "t"})
		assert.ErrorIs(t, err, models.ErrPhotoURLRequired)

		assert.Len(t, store.ListPhotos(), 10)
	})
}

func TestPhotoAlbumStore_ToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("toggles twice back to the original state", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		photo, err := store.ToggleFavorite(ctx, 3)
		require.NoError(t, err)
		assert.True(t, photo.Favorite)
		assert.Equal(t, []int64{3}, photoIDs(store.ListFavorites()))

		photo, err = store.ToggleFavorite(ctx, 3)
		require.NoError(t, err)
		assert.False(t, photo.Favorite)
		assert.Empty(t, store.ListFavorites())
	})

	t.Run("favorites keep favoriting order", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		for _, id := range []int64{5, 2, 9} {
			_, err := store.ToggleFavorite(ctx, id)
			require.NoError(t, err)
		}
		assert.Equal(t, []int64{5, 2, 9}, photoIDs(store.ListFavorites()))
		for _, p := range store.ListFavorites() {
			assert.True(t, p.Favorite)
		}
	})

	t.Run("unknown photo is not found", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		_, err := store.ToggleFavorite(ctx, 12345)
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)
	})
}

func TestPhotoAlbumStore_DeletePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to favorites and covers", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		_, err := store.ToggleFavorite(ctx, 1)
		require.NoError(t, err)

		require.NoError(t, store.DeletePhoto(ctx, 1))

		_, ok := store.GetPhotoByID(1)
		assert.False(t, ok)
		assert.Empty(t, store.ListFavorites())

		album, ok := store.GetAlbumByID(1)
		require.True(t, ok)
		assert.Nil(t, album.CoverPhotoID)
	})

	t.Run("unknown photo is not found", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		assert.ErrorIs(t, store.DeletePhoto(ctx, 999), models.ErrPhotoNotFound)
		assert.Len(t, store.ListPhotos(), 10)
	})
}

func TestPhotoAlbumStore_Albums(t *testing.T) {
	ctx := context.Background()

	t.Run("add album validates name", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		_, err := store.AddAlbum(ctx, models.NewAlbumInput{Name: " "})
		assert.ErrorIs(t, err, models.ErrAlbumNameRequired)

		album, err := store.AddAlbum(ctx, models.NewAlbumInput{Name: "Trips"})
		require.NoError(t, err)
		assert.Nil(t, album.CoverPhotoID)
		assert.Len(t, store.ListAlbums(), 3)
	})

	t.Run("update replaces the whole record", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		cover := int64(2)

		updated, err := store.UpdateAlbum(ctx, models.Album{ID: 1, Name: "Outdoors", CoverPhotoID: &cover})
		require.NoError(t, err)
		assert.Equal(t, "Outdoors", updated.Name)
		assert.Nil(t, updated.Description, "omitted description is cleared")

		album, _ := store.GetAlbumByID(1)
		assert.Equal(t, updated, album)
	})

	t.Run("update checks existence and fields", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		missing := int64(999)

		_, err := store.UpdateAlbum(ctx, models.Album{ID: 42, Name: "x"})
		assert.ErrorIs(t, err, models.ErrAlbumNotFound)
		_, err = store.UpdateAlbum(ctx, models.Album{ID: 1, Name: ""})
		assert.ErrorIs(t, err, models.ErrAlbumNameRequired)
		_, err = store.UpdateAlbum(ctx, models.Album{ID: 1, Name: "x", CoverPhotoID: &missing})
		assert.ErrorIs(t, err, models.ErrAlbumCoverNotFound)

		album, _ := store.GetAlbumByID(1)
		assert.Equal(t, "Nature", album.Name)
	})

	t.Run("delete album cascades to photos", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		require.NoError(t, store.DeleteAlbum(ctx, 1))

		_, ok := store.GetAlbumByID(1)
		assert.False(t, ok)
		for _, p := range store.ListPhotos() {
			assert.NotContains(t, p.AlbumIDs, int64(1))
		}
		assert.Len(t, store.ListPhotos(), 10, "photos survive album deletion")
		assert.ErrorIs(t, store.DeleteAlbum(ctx, 1), models.ErrAlbumNotFound)
	})

	t.Run("delete album keeps the photo's other albums", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 1))
		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 2))

		require.NoError(t, store.DeleteAlbum(ctx, 1))
		photo, _ := store.GetPhotoByID(9)
		assert.Equal(t, []int64{2}, photo.AlbumIDs)

		require.NoError(t, store.DeleteAlbum(ctx, 2))
		photo, _ = store.GetPhotoByID(9)
		assert.Equal(t, []int64{}, photo.AlbumIDs)
	})

	t.Run("album lifecycle from empty storage", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		putJSON(t, kv, repository.KeyPhotos, []models.Photo{})
		putJSON(t, kv, repository.KeyAlbums, []models.Album{})
		putJSON(t, kv, repository.KeyFavorites, []models.Photo{})
		store := newLoadedStore(t, kv)
		require.Empty(t, store.ListPhotos())

		album, err := store.AddAlbum(ctx, models.NewAlbumInput{Name: "Trips"})
		require.NoError(t, err)
		photo, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "Beach", URL: "data:image/png;base64,iVBORw0KGgo="})
		require.NoError(t, err)
		assert.Equal(t, models.SizeRegular, photo.Size)
		assert.Equal(t, []int64{}, photo.AlbumIDs)

		require.NoError(t, store.AddPhotoToAlbum(ctx, photo.ID, album.ID))
		assert.Equal(t, []int64{photo.ID}, photoIDs(store.GetPhotosByAlbumID(album.ID)))

		require.NoError(t, store.DeleteAlbum(ctx, album.ID))
		assert.Empty(t, store.GetPhotosByAlbumID(album.ID))
		got, ok := store.GetPhotoByID(photo.ID)
		require.True(t, ok)
		assert.Equal(t, []int64{}, got.AlbumIDs)
	})
}

func TestPhotoAlbumStore_AlbumMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("add is idempotent", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 2))
		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 2))

		photo, _ := store.GetPhotoByID(9)
		assert.Equal(t, []int64{2}, photo.AlbumIDs)
		assert.Equal(t, []int64{3, 6, 8, 9}, photoIDs(store.GetPhotosByAlbumID(2)))
	})

	t.Run("add checks both ends", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		assert.ErrorIs(t, store.AddPhotoToAlbum(ctx, 999, 1), models.ErrPhotoNotFound)
		assert.ErrorIs(t, store.AddPhotoToAlbum(ctx, 9, 999), models.ErrAlbumNotFound)
	})

	t.Run("remove clears matching cover", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		require.NoError(t, store.RemovePhotoFromAlbum(ctx, 3, 2))

		album, _ := store.GetAlbumByID(2)
		assert.Nil(t, album.CoverPhotoID)
		assert.Equal(t, []int64{6, 8}, photoIDs(store.GetPhotosByAlbumID(2)))

		cover, ok := store.AlbumCover(2)
		require.True(t, ok)
		assert.Equal(t, int64(6), cover.ID, "falls back to first album photo")
	})

	t.Run("remove keeps other covers", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		require.NoError(t, store.RemovePhotoFromAlbum(ctx, 2, 1))

		album, _ := store.GetAlbumByID(1)
		require.NotNil(t, album.CoverPhotoID)
		assert.Equal(t, int64(1), *album.CoverPhotoID)
	})

	t.Run("remove of an unassociated photo fails", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())
		assert.ErrorIs(t, store.RemovePhotoFromAlbum(ctx, 9, 1), models.ErrPhotoNotInAlbum)
	})

	t.Run("summaries count photos", func(t *testing.T) {
		store := newLoadedStore(t, repository.NewMemoryKV())

		summaries := store.ListAlbumSummaries()
		require.Len(t, summaries, 2)
		assert.Equal(t, 5, summaries[0].PhotoCount)
		assert.Equal(t, 3, summaries[1].PhotoCount)
		require.NotNil(t, summaries[0].Cover)
		assert.Equal(t, int64(1), summaries[0].Cover.ID)
	})
}

func TestPhotoAlbumStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("state survives a reload", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		store := newLoadedStore(t, kv)

		photo, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "New", URL: "u"})
		require.NoError(t, err)
		_, err = store.ToggleFavorite(ctx, photo.ID)
		require.NoError(t, err)
		album, err := store.AddAlbum(ctx, models.NewAlbumInput{Name: "Mine"})
		require.NoError(t, err)
		require.NoError(t, store.AddPhotoToAlbum(ctx, photo.ID, album.ID))

		reloaded := newLoadedStore(t, kv)
		assert.Equal(t, store.ListPhotos(), reloaded.ListPhotos())
		assert.Equal(t, store.ListAlbums(), reloaded.ListAlbums())
		assert.Equal(t, store.ListFavorites(), reloaded.ListFavorites())
	})

	t.Run("empty collections are persisted", func(t *testing.T) {
		kv := repository.NewMemoryKV()
		store := newLoadedStore(t, kv)

		for _, p := range store.ListPhotos() {
			require.NoError(t, store.DeletePhoto(ctx, p.ID))
		}
		for _, a := range store.ListAlbums() {
			require.NoError(t, store.DeleteAlbum(ctx, a.ID))
		}

		reloaded := newLoadedStore(t, kv)
		assert.Empty(t, reloaded.ListPhotos())
		assert.Empty(t, reloaded.ListAlbums())
	})

	t.Run("failed writes do not fail mutations", func(t *testing.T) {
		kv := &failingKV{inner: repository.NewMemoryKV()}
		store := newLoadedStore(t, kv)

		photo, err := store.AddPhoto(ctx, models.NewPhotoInput{Title: "Kept", URL: "u"})
		require.NoError(t, err)

		got, ok := store.GetPhotoByID(photo.ID)
		require.True(t, ok)
		assert.Equal(t, "Kept", got.Title)
		assert.Greater(t, kv.writes, 0)
	})

	t.Run("first mutation after a failed read persists memory", func(t *testing.T) {
		mem := repository.NewMemoryKV()
		putJSON(t, mem, repository.KeyPhotos, []models.Photo{{ID: 500, Title: "Mine", URL: "u"}})
		kv := &unreadableKV{KeyValueStore: mem, key: repository.KeyPhotos, broken: true}
		store := newLoadedStore(t, kv)

		_, err := store.ToggleFavorite(ctx, 1)
		require.NoError(t, err)

		var stored []models.Photo
		readJSON(t, mem, repository.KeyPhotos, &stored)
		assert.Equal(t, photoIDs(store.ListPhotos()), photoIDs(stored))
	})

	t.Run("idempotent add skips the write", func(t *testing.T) {
		kv := &failingKV{inner: repository.NewMemoryKV()}
		store := newLoadedStore(t, kv)
		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 1))

		before := kv.writes
		require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 1))
		assert.Equal(t, before, kv.writes)
	})
}

func TestPhotoAlbumStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, repository.NewMemoryKV())

	var events []ChangeEvent
	unsubscribe := store.Subscribe(func(ev ChangeEvent) {
		// subscribers observe the state after the change
		if ev.Type == ChangePhotoDeleted {
			_, ok := store.GetPhotoByID(ev.PhotoID)
			assert.False(t, ok)
		}
		events = append(events, ev)
	})

	require.NoError(t, store.DeletePhoto(ctx, 4))
	require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 1))
	require.NoError(t, store.AddPhotoToAlbum(ctx, 9, 1))
	_, err := store.ToggleFavorite(ctx, 999)
	require.Error(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, ChangeEvent{Type: ChangePhotoDeleted, PhotoID: 4}, events[0])
	assert.Equal(t, ChangeEvent{Type: ChangePhotoAddedToAlbum, PhotoID: 9, AlbumID: 1}, events[1])

	unsubscribe()
	require.NoError(t, store.DeleteAlbum(ctx, 2))
	assert.Len(t, events, 2)
}

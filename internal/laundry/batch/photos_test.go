// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/laundry/batch"
	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
)

// wardrobe wires a catalog and a batch store over one badger database and a
// photo directory, the way the local storage mode does.
type wardrobe struct {
	clothes *library.Library
	batches *batch.Store
	photos  *objectstore.FileStore
	root    string
}

func newWardrobe(t *testing.T) *wardrobe {
	t.Helper()

	db, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	root := t.TempDir()
	photos, err := objectstore.NewFileStore(root, "http://host/photos")
	require.NoError(t, err)

	notifier := notify.NewNotifier(notify.NewMemoryFeed(50))
	clothes := library.NewLibrary(library.NewLocalRepository(db), photos, notifier)
	batches := batch.NewStore(batch.NewLocalRepository(db), notifier, batch.DefaultOptions())
	clothes.AddPhotoReferences(batches)

	return &wardrobe{clothes: clothes, batches: batches, photos: photos, root: root}
}

func (w *wardrobe) photoExists(t *testing.T, publicURL string) bool {
	t.Helper()

	key, ok := w.photos.KeyFromURL(publicURL)
	require.True(t, ok, "url %s not served by the photo store", publicURL)

	_, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(key)))
	return err == nil
}

func squarePNG(t *testing.T, shade uint8) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{B: shade, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDeleteCloth_KeepsPhotoShownInBatch(t *testing.T) {
	ctx := context.Background()
	w := newWardrobe(t)

	cloth, err := w.clothes.AddCloth(ctx, userID, squarePNG(t, 120), "Blue Shirt", "shirt")
	require.NoError(t, err)

	created, err := w.batches.CreateBatch(ctx, userID, "Monday wash")
	require.NoError(t, err)
	item, err := w.batches.AddLibraryClothToBatch(ctx, userID, created.ID, cloth)
	require.NoError(t, err)
	require.Equal(t, cloth.PhotoURL, item.Photo)

	require.NoError(t, w.clothes.DeleteCloth(ctx, userID, cloth.ID))
	assert.True(t, w.photoExists(t, item.Photo), "batch item photo must survive the catalog delete")

	t.Run("deleted once no item shows it", func(t *testing.T) {
		other, err := w.clothes.AddCloth(ctx, userID, squarePNG(t, 60), "", "towel")
		require.NoError(t, err)
		copied, err := w.batches.AddLibraryClothToBatch(ctx, userID, created.ID, other)
		require.NoError(t, err)

		require.NoError(t, w.batches.RemoveClothFromBatch(ctx, userID, created.ID, copied.ID))
		require.NoError(t, w.clothes.DeleteCloth(ctx, userID, other.ID))
		assert.False(t, w.photoExists(t, other.PhotoURL))
	})
}

func TestUpdatePhoto_KeepsPreviousPhotoShownInBatch(t *testing.T) {
	ctx := context.Background()
	w := newWardrobe(t)

	cloth, err := w.clothes.AddCloth(ctx, userID, squarePNG(t, 120), "Blue Shirt", "shirt")
	require.NoError(t, err)

	created, err := w.batches.CreateBatch(ctx, userID, "Monday wash")
	require.NoError(t, err)
	item, err := w.batches.AddLibraryClothToBatch(ctx, userID, created.ID, cloth)
	require.NoError(t, err)

	updated, err := w.clothes.UpdatePhoto(ctx, userID, cloth.ID, squarePNG(t, 200))
	require.NoError(t, err)
	require.NotEqual(t, cloth.PhotoURL, updated.PhotoURL)

	assert.True(t, w.photoExists(t, item.Photo))
	assert.True(t, w.photoExists(t, updated.PhotoURL))
}

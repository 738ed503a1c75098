package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bedtime-server/internal/storage"
)

func newTestStore(t *testing.T) (storage.ArtifactStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileArtifactStore(dir, "/media/", zap.NewNop())
	require.NoError(t, err)
	return store, dir
}

func TestFileArtifactStore_SaveImage(t *testing.T) {
	store, dir := newTestStore(t)

	ref, err := store.Save(storage.KindImage, 0, []byte("png-data"))

	require.NoError(t, err)
	// Базовый URL нормализуется без завершающего слеша
	assert.Equal(t, "/media/story_image_0.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, "story_image_0.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-data"), data)
}

func TestFileArtifactStore_SaveAudio(t *testing.T) {
	store, dir := newTestStore(t)

	ref, err := store.Save(storage.KindAudio, 3, []byte("mp3-data"))

	require.NoError(t, err)
	assert.Equal(t, "/media/story_audio_3.mp3", ref)
	assert.FileExists(t, filepath.Join(dir, "story_audio_3.mp3"))
}

func TestFileArtifactStore_OverwritesSameIndex(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.Save(storage.KindImage, 1, []byte("first"))
	require.NoError(t, err)
	_, err = store.Save(storage.KindImage, 1, []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "story_image_1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestFileArtifactStore_RejectsEmptyData(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(storage.KindImage, 0, nil)

	assert.ErrorIs(t, err, storage.ErrArtifactSaveFailed)
}

func TestNewFileArtifactStore_RequiresConfiguration(t *testing.T) {
	_, err := storage.NewFileArtifactStore("", "/media", zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewFileArtifactStore(t.TempDir(), "", zap.NewNop())
	assert.Error(t, err)
}

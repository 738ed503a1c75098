package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrArtifactSaveFailed - ошибка при сохранении файла артефакта.
var ErrArtifactSaveFailed = errors.New("artifact save failed")

// Kind вид артефакта сегмента.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// ext возвращает расширение файла для вида артефакта.
func (k Kind) ext() string {
	if k == KindAudio {
		return "mp3"
	}
	return "png"
}

// ArtifactStore сохраняет байты артефакта под детерминированным именем,
// производным от индекса сегмента и вида, и возвращает публичную ссылку.
type ArtifactStore interface {
	Save(kind Kind, segmentIndex int, data []byte) (string, error)
}

// fileArtifactStore - реализация ArtifactStore поверх локальной директории.
type fileArtifactStore struct {
	savePath      string
	publicBaseURL string
	logger        *zap.Logger
}

// NewFileArtifactStore создает файловое хранилище артефактов.
func NewFileArtifactStore(savePath, publicBaseURL string, logger *zap.Logger) (ArtifactStore, error) {
	if savePath == "" {
		return nil, errors.New("media save path (MEDIA_SAVE_PATH) is not configured")
	}
	if publicBaseURL == "" {
		return nil, errors.New("media public base URL (MEDIA_PUBLIC_BASE_URL) is not configured")
	}
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", savePath, err)
	}

	return &fileArtifactStore{
		savePath:      savePath,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger.Named("ArtifactStore"),
	}, nil
}

// Save пишет файл story_{kind}_{index}.{ext} в директорию хранилища.
// Повторный запрос с тем же индексом перезаписывает предыдущий файл.
func (s *fileArtifactStore) Save(kind Kind, segmentIndex int, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty artifact data", ErrArtifactSaveFailed)
	}

	fileName := fmt.Sprintf("story_%s_%d.%s", kind, segmentIndex, kind.ext())
	filePath := filepath.Join(s.savePath, fileName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		s.logger.Error("Failed to save artifact to file", zap.String("path", filePath), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrArtifactSaveFailed, err)
	}

	ref := s.publicBaseURL + "/" + fileName
	s.logger.Debug("Artifact saved",
		zap.String("kind", string(kind)),
		zap.Int("segment_index", segmentIndex),
		zap.String("path", filePath),
		zap.String("ref", ref),
	)
	return ref, nil
}

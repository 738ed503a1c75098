package mocks

import (
	"github.com/stretchr/testify/mock"

	"bedtime-server/internal/storage"
)

// MockArtifactStore is a mock type for the storage.ArtifactStore type
type MockArtifactStore struct {
	mock.Mock
}

// Save provides a mock function with given fields: kind, segmentIndex, data
func (_m *MockArtifactStore) Save(kind storage.Kind, segmentIndex int, data []byte) (string, error) {
	ret := _m.Called(kind, segmentIndex, data)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	return r0, ret.Error(1)
}

// NewMockArtifactStore creates a new instance of MockArtifactStore.
func NewMockArtifactStore(t interface {
	mock.TestingT
	Helper()
}) *MockArtifactStore {
	m := &MockArtifactStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ storage.ArtifactStore = (*MockArtifactStore)(nil)

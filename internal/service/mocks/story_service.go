package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bedtime-server/internal/service"
)

// MockStoryService is a mock type for the StoryService type
type MockStoryService struct {
	mock.Mock
}

// GenerateStory provides a mock function with given fields: ctx, req
func (_m *MockStoryService) GenerateStory(ctx context.Context, req service.GenerateStoryRequest) (*service.SegmentBundle, error) {
	ret := _m.Called(ctx, req)

	var r0 *service.SegmentBundle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.SegmentBundle)
	}

	return r0, ret.Error(1)
}

// ContinueStory provides a mock function with given fields: ctx, req
func (_m *MockStoryService) ContinueStory(ctx context.Context, req service.ContinueStoryRequest) (*service.SegmentBundle, error) {
	ret := _m.Called(ctx, req)

	var r0 *service.SegmentBundle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.SegmentBundle)
	}

	return r0, ret.Error(1)
}

// NewMockStoryService creates a new instance of MockStoryService.
func NewMockStoryService(t interface {
	mock.TestingT
	Helper()
}) *MockStoryService {
	m := &MockStoryService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.StoryService = (*MockStoryService)(nil)

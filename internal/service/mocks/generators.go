package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bedtime-server/internal/service"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

// GenerateText provides a mock function with given fields: ctx, systemPrompt, userPrompt, maxTokens
func (_m *MockTextGenerator) GenerateText(ctx context.Context, systemPrompt string, userPrompt string, maxTokens int) (string, service.UsageInfo, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt, maxTokens)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 service.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(service.UsageInfo)
	}

	return r0, r1, ret.Error(2)
}

// NewMockTextGenerator creates a new instance of MockTextGenerator.
// The first argument is typically a *testing.T value.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.TextGenerator = (*MockTextGenerator)(nil)

// MockImageGenerator is a mock type for the ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

// GenerateImage provides a mock function with given fields: ctx, prompt
func (_m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	ret := _m.Called(ctx, prompt)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// NewMockImageGenerator creates a new instance of MockImageGenerator.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ImageGenerator = (*MockImageGenerator)(nil)

// MockVoiceGenerator is a mock type for the VoiceGenerator type
type MockVoiceGenerator struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, text
func (_m *MockVoiceGenerator) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ret := _m.Called(ctx, text)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// NewMockVoiceGenerator creates a new instance of MockVoiceGenerator.
func NewMockVoiceGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockVoiceGenerator {
	m := &MockVoiceGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.VoiceGenerator = (*MockVoiceGenerator)(nil)

// MockTranscriber is a mock type for the Transcriber type
type MockTranscriber struct {
	mock.Mock
}

// Transcribe provides a mock function with given fields: ctx, filePath
func (_m *MockTranscriber) Transcribe(ctx context.Context, filePath string) (string, error) {
	ret := _m.Called(ctx, filePath)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	return r0, ret.Error(1)
}

// NewMockTranscriber creates a new instance of MockTranscriber.
func NewMockTranscriber(t interface {
	mock.TestingT
	Helper()
}) *MockTranscriber {
	m := &MockTranscriber{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Transcriber = (*MockTranscriber)(nil)

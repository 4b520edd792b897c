package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/LanderU/rmf-core/core/schedule"
)

// Client is the transport surface a schedule participant uses to query
// another participant's Database and await the response Patch.
type Client interface {
	SendQuery(participantID string, q schedule.Query) (string, error)
	WaitForPatch(requestID string, timeout time.Duration) (schedule.Patch, error)
}

// MockPublisher is a Client test double.
type MockPublisher struct {
	Queries     map[string]schedule.Query
	FailIDs     map[string]bool
	PatchResult map[string]schedule.Patch
	mu          sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Queries:     make(map[string]schedule.Query),
		FailIDs:     make(map[string]bool),
		PatchResult: make(map[string]schedule.Patch),
	}
}

// SendQuery records the query or returns an error if configured to fail.
func (m *MockPublisher) SendQuery(participantID string, q schedule.Query) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[participantID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Queries[participantID] = q
	requestID := fmt.Sprintf("req-%s", participantID)
	return requestID, nil
}

// WaitForPatch returns the patch staged for requestID in PatchResult.
func (m *MockPublisher) WaitForPatch(requestID string, _ time.Duration) (schedule.Patch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	patch, ok := m.PatchResult[requestID]
	if !ok {
		return schedule.Patch{}, fmt.Errorf("unknown request")
	}
	return patch, nil
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/rinkcharts/shotmap/internal/domain/rawdata"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

type archiveMock struct {
	mock.Mock
}

func (m *archiveMock) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func TestAggregationService_Run_ArchiveReceivesDrainedPayloads(t *testing.T) {
	t.Parallel()

	payloads := []rawdata.Payload{
		{Source: "nhle", EntityType: "roster", EntityKey: "BOS", Season: "20232024"},
	}

	archive := &archiveMock{}
	archive.
		On("UpsertMany", mock.Anything, payloads).
		Return(nil).
		Once()

	service := NewAggregationService(seasonProvider(), &memoryStore{}, logging.NewNop()).
		WithArchive(archive, staticPayloadSource{payloads: payloads})

	result, err := service.Run(t.Context(), AggregationInput{Season: "20232024"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.ArchivedPayloads != 1 {
		t.Fatalf("expected 1 archived payload, got %d", result.ArchivedPayloads)
	}
	archive.AssertExpectations(t)
}

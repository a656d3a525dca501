package channel

import (
	"context"
	"fmt"

	"rental-sync/core/storage/models"

	"go.uber.org/zap"
)

// apiAdapter is the placeholder for channels with official push/pull APIs.
// OAuth-based channel integrations are not implemented yet; pulls succeed
// with an empty result so the rest of the unit keeps reconciling.
type apiAdapter struct {
	logger *zap.Logger
}

func (a *apiAdapter) Name() string {
	return "api-stub"
}

func (a *apiAdapter) Pull(ctx context.Context, conn *models.ChannelConnection) (*PullResult, error) {
	a.logger.Info("API channel not implemented, returning empty result",
		zap.Uint("connection_id", conn.ID),
		zap.String("channel", conn.Channel),
	)
	return &PullResult{
		NoChanges: true,
		Log:       fmt.Sprintf("channel %s uses an official API; adapter not implemented yet", conn.Channel),
	}, nil
}

func (a *apiAdapter) Push(ctx context.Context, conn *models.ChannelConnection, bookings []models.CanonicalBooking) error {
	return fmt.Errorf("push to API channel %q: %w", conn.Channel, ErrNotImplemented)
}

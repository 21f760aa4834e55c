package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	listingsapp "rentbook/internal/app/handlers/listings"
)

type listingFixture struct {
	ID     string `json:"id"`
	HostID string `json:"host_id"`
	dto.ListingInput
}

// loadListingFixtures seeds active listings through the regular upsert
// command, so fixtures get the same validation and events as API writes.
func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		cmd := listingsapp.UpsertListingCommand{
			ListingID: fx.ID,
			HostID:    fx.HostID,
			Input:     fx.ListingInput,
			Status:    "ACTIVE",
		}
		listing, err := commands.Dispatch[listingsapp.UpsertListingCommand, *dto.Listing](ctx, a.commands, cmd)
		if err != nil {
			logger.Error("fixture rejected", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

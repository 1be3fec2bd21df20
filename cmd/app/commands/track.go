package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/allisson/parceltrack/internal/tracking/domain"
	trackingUsecase "github.com/allisson/parceltrack/internal/tracking/usecase"
)

// RunTrack looks up one tracking code and prints its events, most recent first.
// The lookup is recorded in the tracking history like any API lookup.
func RunTrack(
	ctx context.Context,
	trackingUseCase trackingUsecase.TrackingUseCase,
	logger *slog.Logger,
	writer io.Writer,
	trackingCode string,
	format string,
) error {
	trackingCode = strings.TrimSpace(trackingCode)
	if trackingCode == "" {
		return fmt.Errorf("tracking code is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("tracking parcel", slog.String("tracking_code", trackingCode))

	info, err := trackingUseCase.Track(ctx, trackingCode)
	if err != nil {
		return fmt.Errorf("failed to track %s: %w", trackingCode, err)
	}

	if format == "json" {
		return writeJSON(writer, info)
	}
	return outputTrackText(writer, info)
}

func outputTrackText(w io.Writer, info *domain.TrackingInfo) error {
	state := "in transit"
	if info.Delivered {
		state = "delivered"
	}
	if _, err := fmt.Fprintf(w, "Tracking code: %s (%s)\n", info.Code, state); err != nil {
		return err
	}

	if len(info.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events reported by the carrier")
		return err
	}

	for _, event := range info.Events {
		line := fmt.Sprintf("%s %s  %-25s %s", event.Date, event.Time, event.Location, event.Status)
		if event.SubStatus != "" {
			line += " (" + event.SubStatus + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

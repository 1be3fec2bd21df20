package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	trackingUsecase "github.com/allisson/parceltrack/internal/tracking/usecase"
)

// RunCleanTrackingHistory deletes lookup history entries older than the specified number of days.
// Supports dry-run mode to preview deletion count and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanTrackingHistory(
	ctx context.Context,
	trackingUseCase trackingUsecase.TrackingUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning tracking history",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := trackingUseCase.CleanHistory(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete tracking history: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return err
		}
	} else {
		outputCleanText(writer, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(w io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(w, "Dry-run mode: Would delete %d history entry(ies) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(w, "Successfully deleted %d history entry(ies) older than %d day(s)\n", count, days)
	}
}

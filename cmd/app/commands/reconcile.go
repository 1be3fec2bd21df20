package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	orderUsecase "github.com/allisson/parceltrack/internal/order/usecase"
	"github.com/allisson/parceltrack/internal/tracking/domain"
	trackingUsecase "github.com/allisson/parceltrack/internal/tracking/usecase"
)

// reconcileOutput is the JSON shape of a reconciliation pass.
type reconcileOutput struct {
	Tracked int                         `json:"tracked"`
	Changed int                         `json:"changed"`
	Applied int                         `json:"applied"`
	DryRun  bool                        `json:"dry_run"`
	Changes []domain.StatusChangeResult `json:"changes"`
}

// RunReconcile runs one reconciliation pass over every tracked order outside the
// scheduler. In dry-run mode the detected changes are printed but not applied.
func RunReconcile(
	ctx context.Context,
	orderUseCase orderUsecase.OrderUseCase,
	reconciler trackingUsecase.Reconciler,
	logger *slog.Logger,
	writer io.Writer,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	refs, err := orderUseCase.ListTrackedRefs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracked orders: %w", err)
	}

	logger.Info("reconciling tracked orders",
		slog.Int("tracked", len(refs)),
		slog.Bool("dry_run", dryRun),
	)

	changes, err := reconciler.Reconcile(ctx, refs)
	if err != nil {
		return fmt.Errorf("failed to reconcile tracked orders: %w", err)
	}

	applied := 0
	if !dryRun && len(changes) > 0 {
		applied, err = orderUseCase.ApplyStatusChanges(ctx, changes)
		if err != nil {
			return fmt.Errorf("failed to apply status changes: %w", err)
		}
	}

	logger.Info("reconciliation completed",
		slog.Int("tracked", len(refs)),
		slog.Int("changed", len(changes)),
		slog.Int("applied", applied),
		slog.Bool("dry_run", dryRun),
	)

	if format == "json" {
		return writeJSON(writer, reconcileOutput{
			Tracked: len(refs),
			Changed: len(changes),
			Applied: applied,
			DryRun:  dryRun,
			Changes: changes,
		})
	}
	return outputReconcileText(writer, len(refs), changes, applied, dryRun)
}

func outputReconcileText(
	w io.Writer,
	tracked int,
	changes []domain.StatusChangeResult,
	applied int,
	dryRun bool,
) error {
	for _, change := range changes {
		flag := ""
		switch {
		case change.IsCritical:
			flag = " [critical]"
		case change.IsDelivered:
			flag = " [delivered]"
		}
		if _, err := fmt.Fprintf(
			w,
			"%s (%s): %q -> %q%s\n",
			change.OrderID,
			change.TrackingCode,
			change.PreviousStatus,
			change.NewStatus,
			flag,
		); err != nil {
			return err
		}
	}

	var err error
	if dryRun {
		_, err = fmt.Fprintf(w, "Dry-run mode: %d of %d tracked order(s) changed, nothing applied\n", len(changes), tracked)
	} else {
		_, err = fmt.Fprintf(w, "Applied %d of %d change(s) across %d tracked order(s)\n", applied, len(changes), tracked)
	}
	return err
}

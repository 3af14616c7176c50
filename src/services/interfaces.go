package services

import (
	"github.com/username/dealsync/src/models"
)

// SyncService runs one full fetch-compute-write pass over the board.
type SyncService interface {
	// Run executes a sync. dryRun computes every write without issuing it.
	// The report is non-nil whenever the fetch succeeded (including the
	// no-records case); a nil report means the run failed before any write
	// was attempted.
	Run(dryRun bool) (*models.SyncReport, error)

	// LastReport returns the most recent report, if one is cached.
	LastReport() (*models.SyncReport, bool)
}

// NotificationService delivers failure summaries to an operator.
type NotificationService interface {
	SendSyncFailureReport(report *models.SyncReport) error
}

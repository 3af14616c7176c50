package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/models"
	"github.com/username/dealsync/src/parsers"
	"github.com/username/dealsync/src/processors"
	"github.com/username/dealsync/src/store"
	"github.com/username/dealsync/src/utils"
)

const lastReportCacheKey = "last_report"

// numberValue is the typed write payload for a number column.
type numberValue struct {
	Number string `json:"number"`
}

// clearValue is the explicit marker that clears a column, used when a
// metric's preconditions were not met. Writing nothing would leave a stale
// value from an earlier run on the board.
var clearValue = json.RawMessage(`{}`)

type syncServiceImpl struct {
	storeClient store.Client
	inputParser *parsers.InputParser
	metrics     processors.MetricsProcessor
	notifier    NotificationService
	reportCache *cache.Cache
	fieldMap    models.FieldMap
	boardID     string
}

func NewSyncService(
	storeClient store.Client,
	inputParser *parsers.InputParser,
	metrics processors.MetricsProcessor,
	notifier NotificationService,
	reportCache *cache.Cache,
	fieldMap models.FieldMap,
	boardID string,
) SyncService {
	return &syncServiceImpl{
		storeClient: storeClient,
		inputParser: inputParser,
		metrics:     metrics,
		notifier:    notifier,
		reportCache: reportCache,
		fieldMap:    fieldMap,
		boardID:     boardID,
	}
}

// Run fetches the board's items, computes the metric set for each, and writes
// the results back item by item. One item's failure never stops the others;
// only a failed fetch aborts the run, and then before any write is attempted.
func (s *syncServiceImpl) Run(dryRun bool) (*models.SyncReport, error) {
	report := &models.SyncReport{
		RunID:     uuid.NewString(),
		BoardID:   s.boardID,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
	logger.L.Info("Starting sync run", "runID", report.RunID, "boardID", s.boardID, "dryRun", dryRun)

	items, err := s.storeClient.FetchItems()
	if errors.Is(err, store.ErrNoItems) {
		report.Status = models.RunNoRecords
		report.FinishedAt = time.Now().UTC()
		s.cacheReport(report)
		logger.L.Info("Sync run found no items", "runID", report.RunID, "boardID", s.boardID)
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sync run %s aborted before any write: %w", report.RunID, err)
	}

	for _, item := range items {
		outcome := s.processItem(item, dryRun)
		report.Outcomes = append(report.Outcomes, outcome)
		switch outcome.Status {
		case models.StatusUpdated:
			report.Updated++
		case models.StatusSkipped:
			report.Skipped++
		case models.StatusFailed:
			report.Failed++
			logger.L.Error("Item sync failed", "runID", report.RunID, "itemID", outcome.ItemID, "itemName", outcome.ItemName, "reason", outcome.Reason)
		}
	}

	report.Status = models.RunCompleted
	report.FinishedAt = time.Now().UTC()
	s.cacheReport(report)
	logger.L.Info("Sync run finished",
		"runID", report.RunID,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed)

	if report.Failed > 0 && !dryRun && s.notifier != nil {
		if err := s.notifier.SendSyncFailureReport(report); err != nil {
			logger.L.Error("Failed to send sync failure report", "runID", report.RunID, "error", err)
		}
	}
	return report, nil
}

// LastReport returns the cached report from the most recent run.
func (s *syncServiceImpl) LastReport() (*models.SyncReport, bool) {
	if s.reportCache == nil {
		return nil, false
	}
	if cached, found := s.reportCache.Get(lastReportCacheKey); found {
		if report, ok := cached.(*models.SyncReport); ok {
			return report, true
		}
	}
	return nil, false
}

// processItem handles one item in isolation. Any panic during extraction or
// computation is converted into a failed outcome for that item alone.
func (s *syncServiceImpl) processItem(item models.Item, dryRun bool) (outcome models.SyncOutcome) {
	outcome = models.SyncOutcome{ItemID: item.ID, ItemName: item.Name}
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = models.StatusFailed
			outcome.Reason = fmt.Sprintf("unexpected error processing item: %v", r)
		}
	}()

	inputs := s.inputParser.Extract(item)
	result := s.metrics.Compute(inputs)
	outcome.Metrics = result
	outcome.ColumnValues = s.buildColumnValues(result)

	if dryRun {
		logger.L.Info("Dry run: would update item", "itemID", item.ID, "itemName", item.Name)
		outcome.Status = models.StatusSkipped
		return outcome
	}

	if err := s.storeClient.UpdateItem(item.ID, outcome.ColumnValues); err != nil {
		outcome.Status = models.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.Status = models.StatusUpdated
	return outcome
}

// buildColumnValues renders the metric set into the write payload: a present
// metric becomes its two-decimal number value, an absent one the clear
// marker. Metrics without a configured output column are not written.
func (s *syncServiceImpl) buildColumnValues(result models.MetricResult) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for name, columnID := range s.fieldMap.OutputColumns() {
		metric := result[name]
		if !metric.Valid {
			out[columnID] = clearValue
			continue
		}
		payload, err := json.Marshal(numberValue{Number: utils.FormatAmount(metric.Value)})
		if err != nil {
			out[columnID] = clearValue
			continue
		}
		out[columnID] = payload
	}
	return out
}

func (s *syncServiceImpl) cacheReport(report *models.SyncReport) {
	if s.reportCache != nil {
		s.reportCache.Set(lastReportCacheKey, report, cache.DefaultExpiration)
	}
}

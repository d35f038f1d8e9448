package worker

import (
	"context"
	"fmt"
	"time"

	"catalogapi/internal/config"
	"catalogapi/internal/events"
	"catalogapi/internal/logger"
	"catalogapi/internal/worker/processors"

	"github.com/robfig/cron/v3"
)

// SaleRefresher recomputes the cached set of products on sale.
type SaleRefresher interface {
	RefreshOnSaleIDs(ctx context.Context) ([]uint, error)
}

type Worker struct {
	config     *config.Config
	logger     *logger.Logger
	subscriber *events.Subscriber
	processor  *processors.EventProcessor
	refresher  SaleRefresher
	cron       *cron.Cron
}

func New(cfg *config.Config, logger *logger.Logger, subscriber *events.Subscriber, processor *processors.EventProcessor, refresher SaleRefresher) *Worker {
	return &Worker{
		config:     cfg,
		logger:     logger,
		subscriber: subscriber,
		processor:  processor,
		refresher:  refresher,
		cron:       cron.New(),
	}
}

// Start schedules the sale refresh and consumes events until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	if w.config.SaleRefreshSchedule != "" {
		_, err := w.cron.AddFunc(w.config.SaleRefreshSchedule, func() {
			w.RefreshSales(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid sale refresh schedule %q: %w", w.config.SaleRefreshSchedule, err)
		}
		w.cron.Start()
	}

	// Sales that started while the worker was down take effect immediately.
	w.RefreshSales(ctx)

	w.logger.Info("Worker started, listening for events...")
	return w.subscriber.Run(ctx, w.processor.Process)
}

// RefreshSales rewarms the on-sale cache so scheduled sales start and end on time.
func (w *Worker) RefreshSales(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ids, err := w.refresher.RefreshOnSaleIDs(ctx)
	if err != nil {
		w.logger.Error("Failed to refresh on-sale products: %v", err)
		return
	}
	w.logger.Debug("Refreshed on-sale products: %d", len(ids))
}

func (w *Worker) Stop() error {
	w.logger.Info("Stopping worker...")
	<-w.cron.Stop().Done()
	return w.subscriber.Close()
}

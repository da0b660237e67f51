package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// ReconcileFacade exposes the subset of application functionality required by the reconciler.
type ReconcileFacade interface {
	AwaitingPayment(ctx context.Context, limit int) ([]model.Order, error)
	Reconcile(ctx context.Context, order model.Order) (*model.FulfillmentResult, error)
}

// Reconciler periodically settles pending orders against the payment gateway with a pool of workers.
type Reconciler struct {
	facade       ReconcileFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(facade ReconcileFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Reconciler{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize),
	}
}

// Start launches background processing. The first pass runs immediately.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop cancels polling and waits for in-flight orders.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.fetchAndDispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	orders, err := r.facade.AwaitingPayment(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch orders awaiting payment failed", slog.String("error", err.Error()))
		return
	}
	if len(orders) > 0 {
		r.logger.Debug("reconciliation pass", slog.Int("orders", len(orders)))
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- order:
		}
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *Reconciler) handleOrder(ctx context.Context, order model.Order) {
	result, err := r.facade.Reconcile(ctx, order)
	if err != nil {
		var gwErr *domainErrors.GatewayError
		switch {
		case errors.Is(err, domainErrors.ErrPaymentPending):
			return
		case errors.As(err, &gwErr) && gwErr.RetryAfter > 0:
			r.logger.Warn("gateway rate limited", slog.Duration("retry_after", gwErr.RetryAfter))
			sleep(ctx, gwErr.RetryAfter)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			r.logger.Info("order left pending state", slog.String("order_id", order.ID.String()))
		default:
			r.logger.Error("reconcile order failed",
				slog.String("order_id", order.ID.String()),
				slog.String("gateway_order_ref", order.PaymentReference),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if result.Applied {
		r.logger.Info("order reconciled",
			slog.String("order_id", result.OrderID.String()),
			slog.String("gateway_payment_ref", result.GatewayPaymentID),
		)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

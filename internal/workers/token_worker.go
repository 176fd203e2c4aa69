package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const tokenCleanupWorker = "token_cleanup"

// TokenCleanupWorker по расписанию удаляет токены старше TTL.
// Валидность токенов от него не зависит.
type TokenCleanupWorker struct {
	db          *gorm.DB
	authService services.AuthService
	schedule    string

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewTokenCleanupWorker(db *gorm.DB, authService services.AuthService, schedule string) *TokenCleanupWorker {
	return &TokenCleanupWorker{
		db:          db,
		authService: authService,
		schedule:    schedule,
	}
}

// Start регистрирует задачу в cron. Пустое расписание - воркер выключен.
func (w *TokenCleanupWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if w.schedule == "" {
		logger.Info("Token cleanup worker disabled")
		return nil
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := w.cron.AddFunc(w.schedule, func() {
		runCtx, cancel := context.WithTimeout(w.ctx, 5*time.Minute)
		defer cancel()
		_, _ = w.RunOnce(runCtx)
	}); err != nil {
		w.cancel()
		return fmt.Errorf("invalid token cleanup schedule '%s': %w", w.schedule, err)
	}

	w.cron.Start()
	w.running = true
	logger.Info("Token cleanup worker started", "schedule", w.schedule)
	return nil
}

// Stop останавливает cron и ждет завершения текущего запуска
func (w *TokenCleanupWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	<-w.cron.Stop().Done()
	w.running = false
	logger.Info("Token cleanup worker stopped")
}

// RunOnce - один проход очистки
func (w *TokenCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := w.authService.PurgeExpiredTokens(w.db.WithContext(ctx))
	logger.WorkerLog(tokenCleanupWorker, "purge_expired_tokens", err, "deleted", deleted)
	return deleted, err
}

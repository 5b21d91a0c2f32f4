package service

import (
	"context"
	"log/slog"
	"sync"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/repository"
)

// DefaultHistoryLimit bounds GET /v1/history
const DefaultHistoryLimit = 20

// TabService maps tab ids to their controllers. Each tab has exactly one
// controller at a time.
type TabService struct {
	tabs        cache.TabStore
	api         CaseAPI
	renderer    *Renderer
	attempts    repository.AttemptRepo
	authSvc     *AuthService
	broadcaster Broadcaster
	logger      *slog.Logger

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewTabService creates a new tab service
func NewTabService(
	tabs cache.TabStore,
	api CaseAPI,
	renderer *Renderer,
	attempts repository.AttemptRepo,
	authSvc *AuthService,
	logger *slog.Logger,
) *TabService {
	return &TabService{
		tabs:        tabs,
		api:         api,
		renderer:    renderer,
		attempts:    attempts,
		authSvc:     authSvc,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// SetBroadcaster sets the broadcaster handed to every controller
func (s *TabService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
	for _, ctrl := range s.controllers {
		ctrl.SetBroadcaster(b)
	}
}

// Open starts a new tab session and loads its first case. A failed case load
// still opens the tab; the snapshot carries the notice.
func (s *TabService) Open(ctx context.Context) (*model.OpenTabResponse, error) {
	tabID := NewTabID()
	token, err := s.authSvc.GenerateTabToken(tabID)
	if err != nil {
		return nil, err
	}

	ctrl := s.install(tabID)
	snap, err := ctrl.Init(ctx)
	if err != nil {
		s.logger.Warn("tab opened without a case", slog.String("tab_id", tabID), slog.Any("error", err))
	}
	s.logger.Info("tab opened", slog.String("tab_id", tabID))

	return &model.OpenTabResponse{
		Token: token,
		TabID: tabID,
		State: snap,
	}, nil
}

// Reload rebuilds the tab's controller from the volatile store, as a page
// reload would. In-flight work of the old controller is discarded. Only live
// tabs reload; a closed tab stays closed while its token is still valid.
func (s *TabService) Reload(ctx context.Context, tabID string) (*model.Snapshot, error) {
	ctrl, err := s.replace(tabID)
	if err != nil {
		return nil, err
	}
	snap, err := ctrl.Init(ctx)
	if err != nil {
		s.logger.Warn("tab reloaded without a case", slog.String("tab_id", tabID), slog.Any("error", err))
	}
	return snap, nil
}

// Controller returns the live controller of tabID
func (s *TabService) Controller(tabID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.controllers[tabID]
	if !ok {
		return nil, ErrTabNotFound
	}
	return ctrl, nil
}

// Close drops the tab's controller and live connections. Persisted records
// expire with the tab store TTL.
func (s *TabService) Close(tabID string) error {
	s.mu.Lock()
	ctrl, ok := s.controllers[tabID]
	delete(s.controllers, tabID)
	b := s.broadcaster
	s.mu.Unlock()

	if !ok {
		return ErrTabNotFound
	}
	ctrl.Retire()
	if b != nil {
		b.DisconnectTab(tabID)
	}
	s.logger.Info("tab closed", slog.String("tab_id", tabID))
	return nil
}

// History returns the tab's archived attempts, newest first
func (s *TabService) History(ctx context.Context, tabID string, limit int) ([]*model.Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.attempts.ListByTab(ctx, tabID, limit)
}

// Count returns the number of live tabs
func (s *TabService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.controllers)
}

func (s *TabService) install(tabID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installLocked(tabID)
}

func (s *TabService) replace(tabID string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.controllers[tabID]; !ok {
		return nil, ErrTabNotFound
	}
	return s.installLocked(tabID), nil
}

func (s *TabService) installLocked(tabID string) *Controller {
	ctrl := NewController(tabID, s.tabs, s.api, s.renderer, s.logger)
	ctrl.SetAttemptRepo(s.attempts)
	if s.broadcaster != nil {
		ctrl.SetBroadcaster(s.broadcaster)
	}

	if old, ok := s.controllers[tabID]; ok {
		old.Retire()
	}
	s.controllers[tabID] = ctrl
	return ctrl
}

// Package trigger provides workflow trigger orchestration: cron scheduling,
// Redis pub/sub event triggers, and inbound webhook dispatch, all wired
// through a single deployment lifecycle.
package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/application/engine"
	"github.com/smilemakc/mbflow/internal/config"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/cache"
	"github.com/smilemakc/mbflow/pkg/models"
)

// Manager orchestrates all trigger types for deployed workflows.
type Manager struct {
	triggerRepo      repository.TriggerRepository
	workflowRepo     repository.WorkflowRepository
	executionMgr     *engine.ExecutionManager
	cache            *cache.RedisCache
	triggerIndexRepo repository.TriggerIndexRepository
	executionRepo    repository.ExecutionRepository
	scheduler        config.SchedulerConfig

	cronScheduler   *CronScheduler
	eventListener   *EventListener
	webhookRegistry *WebhookRegistry
	router          *Router

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// ManagerConfig holds configuration for the trigger manager.
type ManagerConfig struct {
	TriggerRepo  repository.TriggerRepository
	WorkflowRepo repository.WorkflowRepository
	ExecutionMgr *engine.ExecutionManager
	Cache        *cache.RedisCache

	// TriggerIndexRepo and ExecutionRepo back the router's two-phase match
	// and smart-resume lookup (§4.3.3, §4.3.5). Both are optional: a nil
	// TriggerIndexRepo means Route always misses, a nil ExecutionRepo means
	// smart resume is skipped and every match starts a fresh execution.
	TriggerIndexRepo repository.TriggerIndexRepository
	ExecutionRepo    repository.ExecutionRepository

	// Scheduler carries cron jitter and deployment-lock settings (§4.3.6).
	// Zero fields fall back to a 30-second jitter window, a 5-minute lock
	// TTL and the "lock:workflow:" key prefix.
	Scheduler config.SchedulerConfig
}

// NewManager creates a new trigger manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.TriggerRepo == nil {
		return nil, fmt.Errorf("trigger repository is required")
	}
	if cfg.WorkflowRepo == nil {
		return nil, fmt.Errorf("workflow repository is required")
	}
	if cfg.ExecutionMgr == nil {
		return nil, fmt.Errorf("execution manager is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("redis cache is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		triggerRepo:      cfg.TriggerRepo,
		workflowRepo:     cfg.WorkflowRepo,
		executionMgr:     cfg.ExecutionMgr,
		cache:            cfg.Cache,
		triggerIndexRepo: cfg.TriggerIndexRepo,
		executionRepo:    cfg.ExecutionRepo,
		scheduler:        cfg.Scheduler,
		ctx:              ctx,
		cancel:           cancel,
	}

	if err := m.initializeHandlers(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return m, nil
}

func (m *Manager) initializeHandlers() error {
	cronScheduler, err := NewCronScheduler(CronSchedulerConfig{
		TriggerRepo:  m.triggerRepo,
		WorkflowRepo: m.workflowRepo,
		ExecutionMgr: m.executionMgr,
		Cache:        m.cache,
		Scheduler:    m.scheduler,
	})
	if err != nil {
		return fmt.Errorf("failed to create cron scheduler: %w", err)
	}
	m.cronScheduler = cronScheduler

	eventListener, err := NewEventListener(EventListenerConfig{
		TriggerRepo:  m.triggerRepo,
		WorkflowRepo: m.workflowRepo,
		ExecutionMgr: m.executionMgr,
		Cache:        m.cache,
	})
	if err != nil {
		return fmt.Errorf("failed to create event listener: %w", err)
	}
	m.eventListener = eventListener

	m.webhookRegistry = NewWebhookRegistry(WebhookRegistryConfig{
		TriggerRepo:  m.triggerRepo,
		ExecutionMgr: m.executionMgr,
		Cache:        m.cache,
	})

	m.router = NewRouter(RouterConfig{
		TriggerIndexRepo: m.triggerIndexRepo,
		ExecutionRepo:    m.executionRepo,
		ExecutionMgr:     m.executionMgr,
	})

	return nil
}

// Router exposes the two-phase trigger matcher so an inbound adapter
// (webhook handler, chat/email poller, source-control webhook) can route an
// event and dispatch it without duplicating the match/resume logic.
func (m *Manager) Router() *Router {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.router
}

// Start loads all enabled triggers and starts every trigger subsystem.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	triggers, err := m.triggerRepo.FindEnabled(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled triggers: %w", err)
	}

	if err := m.cronScheduler.Start(m.ctx, triggers); err != nil {
		return fmt.Errorf("failed to start cron scheduler: %w", err)
	}

	if err := m.eventListener.Start(m.ctx, triggers); err != nil {
		return fmt.Errorf("failed to start event listener: %w", err)
	}

	if err := m.webhookRegistry.RegisterAll(m.ctx, triggers); err != nil {
		return fmt.Errorf("failed to register webhooks: %w", err)
	}

	return nil
}

// Stop gracefully shuts down all trigger handlers.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()

	if m.cronScheduler != nil {
		if err := m.cronScheduler.Stop(); err != nil {
			return fmt.Errorf("failed to stop cron scheduler: %w", err)
		}
	}

	if m.eventListener != nil {
		if err := m.eventListener.Stop(); err != nil {
			return fmt.Errorf("failed to stop event listener: %w", err)
		}
	}

	m.wg.Wait()

	return nil
}

// TriggerManual runs a workflow outside its normal trigger path (operator-
// initiated or service-API "run now").
func (m *Manager) TriggerManual(ctx context.Context, triggerID, workflowID string, input map[string]interface{}) (string, error) {
	execution, err := m.executionMgr.Execute(ctx, workflowID, input, nil)
	if err != nil {
		return "", fmt.Errorf("failed to execute workflow: %w", err)
	}

	if err := m.updateTriggerState(ctx, triggerID); err != nil {
		fmt.Printf("failed to update trigger state: %v\n", err)
	}

	return execution.ID, nil
}

// OnTriggerCreated registers a newly created (or newly enabled) trigger with
// the subsystem matching its type.
func (m *Manager) OnTriggerCreated(ctx context.Context, trigger *models.Trigger) error {
	if !trigger.Enabled {
		return nil
	}

	switch trigger.Type {
	case models.TriggerTypeCron, models.TriggerTypeInterval:
		return m.cronScheduler.AddTrigger(ctx, trigger)
	case models.TriggerTypeEvent:
		return m.eventListener.AddTrigger(ctx, trigger)
	case models.TriggerTypeWebhook:
		return m.webhookRegistry.RegisterWebhook(ctx, trigger)
	}

	return nil
}

// OnTriggerUpdated removes the trigger's old registration and re-registers
// it if it remains enabled.
func (m *Manager) OnTriggerUpdated(ctx context.Context, trigger *models.Trigger) error {
	if err := m.OnTriggerDeleted(ctx, trigger.ID); err != nil {
		return err
	}

	if trigger.Enabled {
		return m.OnTriggerCreated(ctx, trigger)
	}

	return nil
}

// OnTriggerDeleted tears down a trigger's registration across every subsystem.
func (m *Manager) OnTriggerDeleted(ctx context.Context, triggerID string) error {
	if err := m.cronScheduler.RemoveTrigger(ctx, triggerID); err != nil {
		fmt.Printf("failed to remove cron trigger: %v\n", err)
	}

	if err := m.eventListener.RemoveTrigger(ctx, triggerID); err != nil {
		fmt.Printf("failed to remove event trigger: %v\n", err)
	}

	if err := m.webhookRegistry.UnregisterWebhook(ctx, triggerID); err != nil {
		fmt.Printf("failed to unregister webhook: %v\n", err)
	}

	if err := m.clearTriggerState(ctx, triggerID); err != nil {
		fmt.Printf("failed to clear trigger state: %v\n", err)
	}

	return nil
}

func (m *Manager) updateTriggerState(ctx context.Context, triggerID string) error {
	state, err := LoadTriggerState(ctx, m.cache, triggerID)
	if err != nil {
		state = NewTriggerState(triggerID)
	}

	state.MarkExecuted()

	return state.Save(ctx, m.cache)
}

func (m *Manager) clearTriggerState(ctx context.Context, triggerID string) error {
	return DeleteTriggerState(ctx, m.cache, triggerID)
}

// WebhookRegistry returns the webhook registry backing HTTP webhook endpoints.
func (m *Manager) WebhookRegistry() *WebhookRegistry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.webhookRegistry
}

// DeploymentManager exposes the lifecycle hooks a workflow deploy/undeploy
// endpoint calls to (de)register that workflow's triggers in one shot.
type DeploymentManager interface {
	DeployWorkflowTriggers(ctx context.Context, workflowID string) error
	UndeployWorkflowTriggers(ctx context.Context, workflowID string) error
}

// DeployWorkflowTriggers registers every trigger belonging to a workflow,
// called when a workflow transitions into the deployed state.
func (m *Manager) DeployWorkflowTriggers(ctx context.Context, workflowID string) error {
	workflowUUID, err := parseWorkflowUUID(workflowID)
	if err != nil {
		return err
	}

	triggers, err := m.triggerRepo.FindByWorkflowID(ctx, workflowUUID)
	if err != nil {
		return fmt.Errorf("failed to load workflow triggers: %w", err)
	}

	for _, tm := range triggers {
		if !tm.Enabled {
			continue
		}
		domainTrigger := m.cronScheduler.modelToDomain(tm)
		if err := m.OnTriggerCreated(ctx, domainTrigger); err != nil {
			return fmt.Errorf("failed to register trigger %s: %w", tm.ID, err)
		}
		if err := indexTrigger(ctx, m.triggerIndexRepo, workflowUUID, tm, "deployed"); err != nil {
			return fmt.Errorf("failed to index trigger %s: %w", tm.ID, err)
		}
	}

	return nil
}

// UndeployWorkflowTriggers removes every trigger belonging to a workflow from
// all trigger subsystems, called when a workflow is undeployed.
func (m *Manager) UndeployWorkflowTriggers(ctx context.Context, workflowID string) error {
	workflowUUID, err := parseWorkflowUUID(workflowID)
	if err != nil {
		return err
	}

	triggers, err := m.triggerRepo.FindByWorkflowID(ctx, workflowUUID)
	if err != nil {
		return fmt.Errorf("failed to load workflow triggers: %w", err)
	}

	for _, tm := range triggers {
		if err := m.OnTriggerDeleted(ctx, tm.ID.String()); err != nil {
			return fmt.Errorf("failed to unregister trigger %s: %w", tm.ID, err)
		}
		if m.triggerIndexRepo != nil {
			if err := m.triggerIndexRepo.DeleteByTriggerID(ctx, tm.ID); err != nil {
				return fmt.Errorf("failed to remove trigger index row %s: %w", tm.ID, err)
			}
		}
	}

	return nil
}

func parseWorkflowUUID(workflowID string) (uuid.UUID, error) {
	id, err := uuid.Parse(workflowID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid workflow ID %q: %w", workflowID, err)
	}
	return id, nil
}

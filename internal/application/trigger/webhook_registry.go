package trigger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/application/engine"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/cache"
	storagemodels "github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/smilemakc/mbflow/pkg/models"
)

// WebhookRegistry holds the set of enabled webhook triggers and resolves
// inbound HTTP calls against them by trigger ID.
type WebhookRegistry struct {
	triggerRepo  repository.TriggerRepository
	executionMgr *engine.ExecutionManager
	cache        *cache.RedisCache

	httpClient *http.Client

	webhooks map[string]*models.Trigger // triggerID -> trigger
	mu       sync.RWMutex
}

// WebhookRegistryConfig holds configuration for the webhook registry.
type WebhookRegistryConfig struct {
	TriggerRepo  repository.TriggerRepository
	ExecutionMgr *engine.ExecutionManager
	Cache        *cache.RedisCache
}

// NewWebhookRegistry creates a new webhook registry.
func NewWebhookRegistry(cfg WebhookRegistryConfig) *WebhookRegistry {
	return &WebhookRegistry{
		triggerRepo:  cfg.TriggerRepo,
		executionMgr: cfg.ExecutionMgr,
		cache:        cfg.Cache,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		webhooks:     make(map[string]*models.Trigger),
	}
}

// RegisterAll registers every webhook-type trigger from a batch, ignoring
// the rest. Used on startup to seed the registry from the database.
func (wr *WebhookRegistry) RegisterAll(ctx context.Context, triggers []*storagemodels.TriggerModel) error {
	for _, trigger := range triggers {
		if trigger.Type != string(models.TriggerTypeWebhook) {
			continue
		}
		if err := wr.RegisterWebhook(ctx, wr.modelToDomain(trigger)); err != nil {
			return fmt.Errorf("failed to register webhook %s: %w", trigger.ID, err)
		}
	}
	return nil
}

// RegisterWebhook adds or replaces a webhook trigger. Non-webhook triggers
// are silently ignored so callers can pass any trigger without branching.
func (wr *WebhookRegistry) RegisterWebhook(ctx context.Context, trigger *models.Trigger) error {
	if trigger.Type != models.TriggerTypeWebhook {
		return nil
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.webhooks[trigger.ID] = trigger
	return nil
}

// UnregisterWebhook removes a webhook trigger. Removing an unknown ID is a no-op.
func (wr *WebhookRegistry) UnregisterWebhook(ctx context.Context, triggerID string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	delete(wr.webhooks, triggerID)
	return nil
}

// GetWebhook returns the registered trigger for an ID, if any.
func (wr *WebhookRegistry) GetWebhook(triggerID string) (*models.Trigger, bool) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	trigger, exists := wr.webhooks[triggerID]
	return trigger, exists
}

// ExecuteWebhook validates and runs the workflow bound to triggerID. It
// enforces signature validation, IP whitelisting and a simple per-trigger
// rate limit before handing off to the execution manager.
func (wr *WebhookRegistry) ExecuteWebhook(ctx context.Context, triggerID string, payload map[string]interface{}, headers map[string]string, sourceIP string) (string, error) {
	trigger, exists := wr.GetWebhook(triggerID)
	if !exists {
		return "", fmt.Errorf("webhook trigger not found: %s", triggerID)
	}

	if !trigger.Enabled {
		return "", fmt.Errorf("webhook trigger disabled: %s", triggerID)
	}

	if err := wr.checkIPWhitelist(trigger, sourceIP); err != nil {
		return "", err
	}

	if err := wr.validateSignature(trigger, payload, headers); err != nil {
		return "", err
	}

	if err := wr.checkRateLimit(ctx, trigger); err != nil {
		return "", err
	}

	input := make(map[string]interface{})
	if defaultInput, ok := trigger.Config["input"].(map[string]interface{}); ok {
		for k, v := range defaultInput {
			input[k] = v
		}
	}
	for k, v := range payload {
		input[k] = v
	}

	execution, err := wr.executionMgr.Execute(ctx, trigger.WorkflowID, input, nil)
	if err != nil {
		return "", fmt.Errorf("failed to execute workflow: %w", err)
	}

	if wr.cache != nil {
		state, err := LoadTriggerState(ctx, wr.cache, trigger.ID)
		if err != nil {
			state = NewTriggerState(trigger.ID)
		}
		state.MarkExecuted()
		_ = state.Save(ctx, wr.cache)
	}

	if wr.triggerRepo != nil {
		if triggerUUID, err := uuid.Parse(trigger.ID); err == nil {
			_ = wr.triggerRepo.MarkTriggered(ctx, triggerUUID)
		}
	}

	if execution != nil {
		return execution.ID, nil
	}
	return "", nil
}

// checkIPWhitelist rejects requests from a source IP not covered by the
// trigger's configured whitelist. An absent or empty whitelist allows all.
func (wr *WebhookRegistry) checkIPWhitelist(trigger *models.Trigger, sourceIP string) error {
	raw, ok := trigger.Config["ip_whitelist"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}

	ip := net.ParseIP(sourceIP)
	for _, entry := range raw {
		rule, ok := entry.(string)
		if !ok {
			continue
		}
		if rule == sourceIP {
			return nil
		}
		if _, ipNet, err := net.ParseCIDR(rule); err == nil && ip != nil && ipNet.Contains(ip) {
			return nil
		}
	}

	return fmt.Errorf("source IP not whitelisted: %s", sourceIP)
}

// validateSignature checks the HMAC-SHA256 signature of the payload against
// the trigger's configured secret, when one is set. Without a secret,
// signature validation is skipped.
func (wr *WebhookRegistry) validateSignature(trigger *models.Trigger, payload map[string]interface{}, headers map[string]string) error {
	secret, ok := trigger.Config["secret"].(string)
	if !ok || secret == "" {
		return nil
	}

	signature := headers["X-Webhook-Signature"]
	if signature == "" {
		return fmt.Errorf("signature validation failed: missing X-Webhook-Signature header")
	}

	expected := wr.computeSignature(secret, payload)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("signature validation failed: signature mismatch")
	}

	return nil
}

// computeSignature returns the hex-encoded HMAC-SHA256 of the JSON-encoded payload.
func (wr *WebhookRegistry) computeSignature(secret string, payload map[string]interface{}) string {
	data, _ := json.Marshal(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// checkRateLimit enforces a per-trigger request cap over a sliding one-minute
// window using a Redis counter, when a limit is configured.
func (wr *WebhookRegistry) checkRateLimit(ctx context.Context, trigger *models.Trigger) error {
	limit, ok := trigger.Config["rate_limit"].(float64)
	if !ok || limit <= 0 || wr.cache == nil {
		return nil
	}

	key := fmt.Sprintf("mbflow:webhook:ratelimit:%s", trigger.ID)
	count, err := wr.cache.Client().Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		wr.cache.Client().Expire(ctx, key, time.Minute)
	}
	if count > int64(limit) {
		return fmt.Errorf("rate limit exceeded for trigger %s", trigger.ID)
	}

	return nil
}

func (wr *WebhookRegistry) modelToDomain(tm *storagemodels.TriggerModel) *models.Trigger {
	trigger := &models.Trigger{
		ID:         tm.ID.String(),
		WorkflowID: tm.WorkflowID.String(),
		Type:       models.TriggerType(tm.Type),
		Config:     make(map[string]interface{}),
		Enabled:    tm.Enabled,
		CreatedAt:  tm.CreatedAt,
		UpdatedAt:  tm.UpdatedAt,
	}

	if tm.Config != nil {
		trigger.Config = map[string]interface{}(tm.Config)
	}
	if tm.LastTriggeredAt != nil {
		trigger.LastRun = tm.LastTriggeredAt
	}

	return trigger
}

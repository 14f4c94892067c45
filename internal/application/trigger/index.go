package trigger

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	storagemodels "github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/smilemakc/mbflow/pkg/models"
)

// computeIndexKey derives the coarse lookup key for a trigger's subtype
// from its config, matching the column the trigger_index table is keyed
// on. Subtypes not listed here (MANUAL) have no coarse key.
func computeIndexKey(subtype string, config map[string]interface{}) string {
	switch strings.ToUpper(subtype) {
	case "CRON":
		return stringField(config, "schedule", "expression")
	case "WEBHOOK":
		return stringField(config, "path")
	case "SLACK", "CHAT":
		return stringField(config, "workspace_id")
	case "EMAIL":
		return stringField(config, "address", "filter")
	case "GITHUB", "SOURCE_CONTROL":
		return stringField(config, "repository", "repo")
	case "GOOGLE_CALENDAR", "CALENDAR":
		return stringField(config, "calendar_id")
	default:
		return ""
	}
}

func stringField(config map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := config[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// detailedFilter extracts the subset of a trigger's config that phase two
// of routing evaluates against a candidate event, so the index row can be
// matched without reloading the full trigger.
func detailedFilter(subtype string, config map[string]interface{}) map[string]interface{} {
	filter := make(map[string]interface{})
	switch strings.ToUpper(subtype) {
	case "WEBHOOK":
		copyKeys(config, filter, "methods", "signature_secret", "signature_header")
	case "SLACK", "CHAT":
		copyKeys(config, filter, "channels", "event_types", "users", "require_mention", "ignore_bots")
	case "EMAIL":
		copyKeys(config, filter, "folder", "sender_regex", "subject_regex", "attachment_policy")
	case "GITHUB", "SOURCE_CONTROL":
		copyKeys(config, filter, "events", "branches", "paths", "actions", "author_regex", "labels")
	case "GOOGLE_CALENDAR", "CALENDAR":
		copyKeys(config, filter, "categories", "window_start", "window_end")
	case "CRON":
		copyKeys(config, filter, "timezone")
	}
	return filter
}

func copyKeys(src, dst map[string]interface{}, keys ...string) {
	for _, key := range keys {
		if v, ok := src[key]; ok {
			dst[key] = v
		}
	}
}

// indexTrigger upserts a trigger's coarse key and detailed filter into the
// trigger index (§4.3.2), called on deploy and on any trigger create/update
// that leaves the trigger enabled.
func indexTrigger(ctx context.Context, repo repository.TriggerIndexRepository, workflowID uuid.UUID, tm *storagemodels.TriggerModel, deploymentStatus string) error {
	if repo == nil {
		return nil
	}
	if tm.Type == string(models.TriggerTypeManual) {
		return nil
	}

	subtype := tm.Subtype
	if subtype == "" {
		subtype = tm.Type
	}

	entry := &storagemodels.TriggerIndexModel{
		TriggerID:        tm.ID,
		WorkflowID:       workflowID,
		Subtype:          subtype,
		IndexKey:         computeIndexKey(subtype, tm.Config),
		DeploymentStatus: deploymentStatus,
		DetailedFilter:   storagemodels.JSONBMap(detailedFilter(subtype, tm.Config)),
	}

	if err := repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to index trigger %s: %w", tm.ID, err)
	}
	return nil
}

// matchesDetailedFilter applies phase two of routing (§4.3.3): the per
// subtype checks a coarse-key hit still has to pass before it counts as a
// real match.
func matchesDetailedFilter(subtype string, filter map[string]interface{}, event *models.RawEvent) bool {
	if len(filter) == 0 {
		return true
	}

	switch strings.ToUpper(subtype) {
	case "WEBHOOK":
		return matchesWebhookFilter(filter, event)
	case "SLACK", "CHAT":
		return matchesChatFilter(filter, event)
	case "EMAIL":
		return matchesEmailFilter(filter, event)
	case "GITHUB", "SOURCE_CONTROL":
		return matchesSourceControlFilter(filter, event)
	default:
		return true
	}
}

func matchesWebhookFilter(filter map[string]interface{}, event *models.RawEvent) bool {
	if methods, ok := filter["methods"].([]interface{}); ok && len(methods) > 0 {
		method, _ := event.Headers["method"]
		found := false
		for _, m := range methods {
			if ms, ok := m.(string); ok && strings.EqualFold(ms, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesChatFilter(filter map[string]interface{}, event *models.RawEvent) bool {
	if channels, ok := filter["channels"].([]interface{}); ok && len(channels) > 0 {
		channel, _ := event.Payload["channel"].(string)
		if !containsString(channels, channel) {
			return false
		}
	}
	if eventTypes, ok := filter["event_types"].([]interface{}); ok && len(eventTypes) > 0 {
		eventType, _ := event.Payload["event_type"].(string)
		if !containsString(eventTypes, eventType) {
			return false
		}
	}
	if ignoreBots, ok := filter["ignore_bots"].(bool); ok && ignoreBots {
		if isBot, _ := event.Payload["is_bot"].(bool); isBot {
			return false
		}
	}
	if requireMention, ok := filter["require_mention"].(bool); ok && requireMention {
		if mentioned, _ := event.Payload["mentioned"].(bool); !mentioned {
			return false
		}
	}
	return true
}

func matchesEmailFilter(filter map[string]interface{}, event *models.RawEvent) bool {
	if folder, ok := filter["folder"].(string); ok && folder != "" {
		if got, _ := event.Payload["folder"].(string); !strings.EqualFold(got, folder) {
			return false
		}
	}
	if !matchesRegexField(filter, "sender_regex", event, "sender") {
		return false
	}
	if !matchesRegexField(filter, "subject_regex", event, "subject") {
		return false
	}
	return true
}

func matchesSourceControlFilter(filter map[string]interface{}, event *models.RawEvent) bool {
	if events, ok := filter["events"].([]interface{}); ok && len(events) > 0 {
		eventType, _ := event.Payload["event"].(string)
		if !containsString(events, eventType) {
			return false
		}
	}
	if !matchesGlobField(filter, "branches", event, "branch") {
		return false
	}
	if !matchesGlobField(filter, "paths", event, "path") {
		return false
	}
	if actions, ok := filter["actions"].([]interface{}); ok && len(actions) > 0 {
		action, _ := event.Payload["action"].(string)
		if !containsString(actions, action) {
			return false
		}
	}
	if !matchesRegexField(filter, "author_regex", event, "author") {
		return false
	}
	if labels, ok := filter["labels"].([]interface{}); ok && len(labels) > 0 {
		eventLabels, _ := event.Payload["labels"].([]interface{})
		matched := false
		for _, want := range labels {
			if containsString(eventLabels, fmt.Sprint(want)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchesRegexField(filter map[string]interface{}, filterKey string, event *models.RawEvent, payloadKey string) bool {
	pattern, ok := filter[filterKey].(string)
	if !ok || pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	value, _ := event.Payload[payloadKey].(string)
	return re.MatchString(value)
}

func matchesGlobField(filter map[string]interface{}, filterKey string, event *models.RawEvent, payloadKey string) bool {
	globs, ok := filter[filterKey].([]interface{})
	if !ok || len(globs) == 0 {
		return true
	}
	value, _ := event.Payload[payloadKey].(string)
	for _, g := range globs {
		pattern, ok := g.(string)
		if !ok {
			continue
		}
		if ok, _ := path.Match(pattern, value); ok {
			return true
		}
	}
	return false
}

func containsString(list []interface{}, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

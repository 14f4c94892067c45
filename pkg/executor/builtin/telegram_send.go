package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smilemakc/mbflow/pkg/executor"
)

// TelegramSendExecutor sends a chat message through the Telegram Bot API.
// It backs the EXTERNAL_ACTION/CHAT_SEND subtype, adapting the request/response
// shape TelegramCallbackExecutor already uses against a different endpoint.
type TelegramSendExecutor struct {
	*executor.BaseExecutor
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewTelegramSendExecutor creates a new Telegram message-send executor.
func NewTelegramSendExecutor() *TelegramSendExecutor {
	return &TelegramSendExecutor{
		BaseExecutor: executor.NewBaseExecutor("telegram_send"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.telegram.org",
	}
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

// Execute sends a text message to a chat.
//
// Config:
//   - bot_token: Telegram bot token (required)
//   - chat_id: destination chat ID (required)
//   - text: message body (required)
//   - parse_mode: "Markdown", "MarkdownV2" or "HTML" (optional)
//   - disable_notification: send silently (default: false)
//   - timeout: request timeout in seconds (default: 30)
//
// Output:
//   - message_id: ID assigned by Telegram
//   - duration_ms: execution time
func (e *TelegramSendExecutor) Execute(ctx context.Context, config map[string]any, input any) (any, error) {
	startTime := time.Now()

	botToken, err := e.GetString(config, "bot_token")
	if err != nil {
		return nil, fmt.Errorf("bot_token is required: %w", err)
	}

	chatID, err := e.GetString(config, "chat_id")
	if err != nil {
		return nil, fmt.Errorf("chat_id is required: %w", err)
	}

	text, err := e.GetString(config, "text")
	if err != nil {
		return nil, fmt.Errorf("text is required: %w", err)
	}

	parseMode := e.GetStringDefault(config, "parse_mode", "")
	disableNotification := e.GetBoolDefault(config, "disable_notification", false)
	timeout := e.GetIntDefault(config, "timeout", 30)

	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	if disableNotification {
		payload["disable_notification"] = true
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", e.baseURL, botToken)
	response, err := e.executeRequest(ctx, apiURL, payload, time.Duration(timeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return map[string]any{
		"message_id":  response.Result.MessageID,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}, nil
}

func (e *TelegramSendExecutor) executeRequest(ctx context.Context, url string, payload map[string]any, timeout time.Duration) (*sendMessageResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp sendMessageResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("telegram API error: %s (code: %d)", apiResp.Description, apiResp.ErrorCode)
	}

	return &apiResp, nil
}

// Validate validates the Telegram send executor configuration.
func (e *TelegramSendExecutor) Validate(config map[string]any) error {
	if err := e.ValidateRequired(config, "bot_token", "chat_id", "text"); err != nil {
		return err
	}

	if timeout := e.GetIntDefault(config, "timeout", 30); timeout < 1 || timeout > 300 {
		return fmt.Errorf("timeout must be between 1 and 300 seconds")
	}

	return nil
}

package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/models"
)

// Service sends deal alerts to a Telegram chat when an evaluation finds a
// vehicle priced meaningfully below its comparables.
type Service struct {
	logger         *logrus.Logger
	client         *retryablehttp.Client
	botToken       string
	chatID         string
	minPercentDiff float64
}

func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &Service{
		logger:         logger,
		client:         client,
		botToken:       cfg.Telegram.BotToken,
		chatID:         cfg.Telegram.ChatID,
		minPercentDiff: cfg.Telegram.MinPercentDiff,
	}
}

// Enabled reports whether a bot token and chat are configured.
func (s *Service) Enabled() bool {
	return s.botToken != "" && s.chatID != ""
}

// NotifyDeal sends an alert when the verdict clears the configured
// percent-cheaper threshold. Results carrying a semantic error never alert.
func (s *Service) NotifyDeal(input models.InputVehicle, result *models.AnalysisResult) error {
	if !s.Enabled() || result == nil || result.Error != "" {
		return nil
	}
	if !result.IsCheaper || result.PercentDiff < s.minPercentDiff {
		return nil
	}

	message := fmt.Sprintf(
		"🚗 <b>Deal alert: %s</b>\n\n"+
			"Asking price: €%d\n"+
			"Market average: €%d (%d comparable listings)\n"+
			"<b>%.1f%% below market</b>\n"+
			"Comparison quality: %s",
		input.Title, input.Price, result.AveragePrice, result.CountSimilar,
		result.PercentDiff, result.ComparisonQuality,
	)

	return s.sendMessage(message)
}

func (s *Service) sendMessage(text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var apiResp struct {
			Description string `json:"description"`
		}
		if err := json.Unmarshal(respBody, &apiResp); err == nil && apiResp.Description != "" {
			return fmt.Errorf("telegram API error: %s", apiResp.Description)
		}
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	s.logger.Debug("Telegram deal alert sent")
	return nil
}

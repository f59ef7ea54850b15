// Package notify sends Telegram notifications for completed valuation
// studies and inventory digests.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"valora/server/config"
	"valora/server/internal/models"
	"valora/server/internal/study"
)

type Service struct {
	logger *logrus.Logger
	client *http.Client
	config config.Config
}

func NewService(cfg config.Config, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage sends a message to the configured Telegram chat.
func (s *Service) SendMessage(message string) error {
	if !s.config.Notifier.Enabled {
		return nil
	}

	if s.config.Notifier.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.Notifier.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.Notifier.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.Notifier.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyStudyCompleted sends a summary of a freshly computed study.
func (s *Service) NotifyStudyCompleted(st *study.Study) error {
	if !s.config.Notifier.Enabled {
		return nil
	}

	analysis := st.Analysis()
	target := st.Target()
	minValue, maxValue := st.ValuationRange()

	var warning string
	if analysis.Degraded() {
		warning = "\n⚠️ Low sample count: statistical filter was skipped\n"
	}

	message := fmt.Sprintf(
		"<b>Valuation study completed</b>\n\n"+
			"🏠 %s\n"+
			"👤 %s\n"+
			"📐 %.2f m²\n"+
			"📊 Mean price/m²: %.2f %s\n"+
			"📉 CV: %.1f%% (%s)\n"+
			"🔍 Retained %d of %d comparables\n"+
			"💰 Value range: %.2f - %.2f %s\n%s",
		target.Address,
		st.Owner(),
		target.Area.Value(),
		analysis.Mean(),
		analysis.Currency(),
		analysis.CV(),
		analysis.Precision(),
		len(analysis.Retained()),
		len(analysis.Samples()),
		minValue.Amount(),
		maxValue.Amount(),
		minValue.Currency(),
		warning,
	)

	return s.SendMessage(message)
}

// NotifyInventoryDigest sends the daily per-project inventory summary.
func (s *Service) NotifyInventoryDigest(stats []models.ProjectStats, names map[string]string) error {
	if !s.config.Notifier.Enabled || len(stats) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("<b>Daily inventory digest</b>\n")
	for _, st := range stats {
		name := names[st.ProjectID]
		if name == "" {
			name = st.ProjectID
		}
		fmt.Fprintf(&b, "\n🏗️ %s\n", name)
		fmt.Fprintf(&b, "Units: %d (%d available, %d reserved, %d sold)\n",
			st.TotalUnits, st.Available, st.Reserved, st.Sold)
		fmt.Fprintf(&b, "Avg price: %.0f | Avg price/m²: %.0f\n", st.AveragePrice, st.AvgPricePerSqm)
	}

	return s.SendMessage(b.String())
}

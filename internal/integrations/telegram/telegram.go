package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
)

// Client handles outbound notifications via the Telegram Bot API
type Client struct {
	apiBase     string
	token       string
	ownerChatID int64
	client      *http.Client
	log         *logrus.Logger
}

// NewClient initializes a new Telegram client. With an empty token the
// client is disabled and Send calls are logged and dropped.
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		apiBase:     cfg.TelegramAPIBase,
		token:       cfg.TelegramToken,
		ownerChatID: cfg.TelegramChatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// NotifyOwner sends a message to the configured owner chat.
func (c *Client) NotifyOwner(text string) error {
	return c.Send(c.ownerChatID, text)
}

// Send delivers a message to a chat.
func (c *Client) Send(chatID int64, text string) error {
	if !c.Enabled() {
		c.log.Debugf("Telegram disabled, dropping message for chat %d", chatID)
		return nil
	}
	if chatID == 0 {
		return fmt.Errorf("no chat id")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	resp, err := c.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	c.log.Infof("Telegram message sent to chat %d", chatID)
	return nil
}

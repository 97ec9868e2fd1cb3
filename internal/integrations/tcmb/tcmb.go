package tcmb

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
)

// Client handles integration with the Central Bank of Türkiye daily
// exchange-rate feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new TCMB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.TCMBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch retrieves the raw daily rates XML
func (c *Client) fetch() ([]byte, error) {
	resp, err := c.client.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("TCMB XML response: %s", string(body))

	return body, nil
}

// parseRate extracts one currency's forex selling rate from the XML
func (c *Client) parseRate(rawBody []byte, code string) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	currency := doc.FindElement(fmt.Sprintf("//Currency[@Kod='%s']", code))
	if currency == nil {
		return 0, fmt.Errorf("no rate data for %s in XML", code)
	}

	rateElement := currency.FindElement("./ForexSelling")
	if rateElement == nil {
		return 0, fmt.Errorf("ForexSelling element not found for %s", code)
	}

	var rate float64
	if _, err := fmt.Sscanf(rateElement.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %w", err)
	}

	return rate, nil
}

// GetRate retrieves the current TRY selling rate for a currency code
// such as "USD" or "EUR".
func (c *Client) GetRate(code string) (float64, error) {
	body, err := c.fetch()
	if err != nil {
		return 0, err
	}

	rate, err := c.parseRate(body, code)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved TCMB rate for %s: %.4f TRY", code, rate)
	return rate, nil
}

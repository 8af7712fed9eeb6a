package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/usagegrid/internal/config"
	"github.com/jgoulah/usagegrid/pkg/models"
)

const publishTimeout = 10 * time.Second

// Publisher sends device summaries to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New connects to the broker described by cfg
func New(cfg config.MQTTConfig, topicPrefix string) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("usagegrid")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return NewWithClient(client, topicPrefix), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	return &Publisher{client: client, topicPrefix: topicPrefix}
}

// SummaryPayload is the retained message body for one device
type SummaryPayload struct {
	DeviceID   int     `json:"device_id"`
	Color      string  `json:"color"`
	PeakUsage  float64 `json:"peak_usage"`
	PeakTime   string  `json:"peak_time"`
	TotalUsage float64 `json:"total_usage"`
	Records    int     `json:"records"`
}

// Topic returns the topic a device summary is published to
func (p *Publisher) Topic(deviceID int) string {
	return fmt.Sprintf("%s/%d/summary", p.topicPrefix, deviceID)
}

// Publish sends one retained summary message
func (p *Publisher) Publish(s models.Summary) error {
	body, err := json.Marshal(SummaryPayload{
		DeviceID:   s.DeviceID,
		Color:      s.Color,
		PeakUsage:  s.PeakUsage,
		PeakTime:   s.PeakTime.Format(time.RFC3339),
		TotalUsage: s.TotalUsage,
		Records:    s.Records,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(s.DeviceID), 1, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", p.Topic(s.DeviceID))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.Topic(s.DeviceID), err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-json-experiment/json"
	"github.com/rs/zerolog/log"

	"github.com/jgoulah/roomwatt/internal/config"
	"github.com/jgoulah/roomwatt/internal/pipeline"
)

// mqttPublisher is the part of mqtt.Client the publisher uses
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher pushes dashboard snapshots to Home Assistant
type Publisher struct {
	client      mqttPublisher
	disconnect  func()
	topicPrefix string
	haConfig    config.HAConfig
	http        *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	p := &Publisher{
		topicPrefix: mqttCfg.TopicPrefix,
		haConfig:    haCfg,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	if p.topicPrefix == "" {
		p.topicPrefix = "roomwatt"
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("roomwatt")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
		p.client = client
		p.disconnect = func() {
			if client.IsConnected() {
				client.Disconnect(250)
			}
		}
	}

	return p, nil
}

// Enabled reports whether any destination is configured
func (p *Publisher) Enabled() bool {
	return p.client != nil || p.haConfig.Enabled
}

// Publish sends the snapshot to every enabled destination
func (p *Publisher) Publish(ctx context.Context, snap *pipeline.Snapshot) error {
	if !p.Enabled() {
		return fmt.Errorf("no publish destination is enabled in config")
	}
	if p.client != nil {
		if err := p.publishMQTT(snap); err != nil {
			return fmt.Errorf("publishing to MQTT: %w", err)
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(ctx, snap); err != nil {
			return fmt.Errorf("publishing to Home Assistant: %w", err)
		}
	}
	return nil
}

// Topics returns the retained scalar values published for a snapshot, keyed by topic
func (p *Publisher) Topics(snap *pipeline.Snapshot) map[string]string {
	topics := map[string]string{
		p.topicPrefix + "/total_cost":       formatFloat(snap.TotalCost, 2),
		p.topicPrefix + "/budget_remaining": formatFloat(snap.Budget.Remaining, 2),
		p.topicPrefix + "/budget_used_pct":  formatFloat(snap.Budget.PercentUsed, 1),
		p.topicPrefix + "/level":            string(snap.Summary.LatestLevel),
		p.topicPrefix + "/day_kwh":          formatFloat(snap.DayNight.DayKWh, 2),
		p.topicPrefix + "/night_kwh":        formatFloat(snap.DayNight.NightKWh, 2),
	}
	if snap.Latest != nil {
		topics[p.topicPrefix+"/latest_power"] = formatFloat(snap.Latest.PowerWatts, 0)
		topics[p.topicPrefix+"/latest_room"] = snap.Latest.RoomNumber
	}
	return topics
}

func (p *Publisher) publishMQTT(snap *pipeline.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := p.send(p.topicPrefix+"/snapshot", body); err != nil {
		return err
	}
	for topic, value := range p.Topics(snap) {
		if err := p.send(topic, value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) send(topic string, payload interface{}) error {
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out publishing %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	log.Debug().Str("topic", topic).Msg("Published MQTT message")
	return nil
}

// HAPayload matches the Home Assistant POST /api/states/<entity_id> body
type HAPayload struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

func (p *Publisher) publishHA(ctx context.Context, snap *pipeline.Snapshot) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", p.haConfig.URL, p.haConfig.EntityID)

	attrs := map[string]any{
		"unit_of_measurement": "%",
		"friendly_name":       "Electricity budget used",
		"total_cost":          snap.TotalCost,
		"budget_limit":        snap.Budget.Limit,
		"budget_remaining":    snap.Budget.Remaining,
		"level":               string(snap.Summary.LatestLevel),
		"day_kwh":             snap.DayNight.DayKWh,
		"night_kwh":           snap.DayNight.NightKWh,
		"day_percent":         snap.DayNight.DayPercent,
		"night_percent":       snap.DayNight.NightPercent,
		"fetched_at":          snap.FetchedAt.Format(time.RFC3339),
	}
	if snap.Summary.HasAmountPaid {
		attrs["amount_paid"] = snap.Summary.LatestAmountPaid
	}
	if snap.Latest != nil {
		attrs["latest_room"] = snap.Latest.RoomNumber
		attrs["latest_power_watts"] = snap.Latest.PowerWatts
		attrs["latest_cost_baht"] = snap.Latest.CostBaht
	}

	body, err := json.Marshal(HAPayload{
		State:      formatFloat(snap.Budget.PercentUsed, 1),
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 200 updates an existing state, 201 creates it
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.disconnect != nil {
		p.disconnect()
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Package mqtt mirrors water heaters onto an MQTT broker using Home Assistant
// discovery, and forwards mode commands back to the controller.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/config"
	"github.com/urmzd/hive-hotwater/pkg/device"
)

// Client is the part of paho.Client the bridge drives.
type Client interface {
	Connect() paho.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Disconnect(quiesce uint)
}

// Bridge publishes discovery and state for every device of a controller.
type Bridge struct {
	client     Client
	topics     Topics
	controller device.Controller
	subscriber device.EventSubscriber
	retryDelay time.Duration

	mu sync.Mutex
	// objectIDs maps topic object ids back to device ids.
	objectIDs map[string]string
}

// NewBridge creates a bridge connected through a paho client built from cfg.
func NewBridge(cfg config.MQTTConfig, controller device.Controller, subscriber device.EventSubscriber) *Bridge {
	topics := Topics{DiscoveryPrefix: cfg.DiscoveryPrefix, BaseTopic: cfg.BaseTopic}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetWill(topics.Status(), PayloadOffline, 1, true)

	b := newBridge(nil, topics, controller, subscriber)

	opts.SetOnConnectHandler(func(client paho.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("MQTT bridge connected")
		if token := client.Publish(topics.Status(), 1, true, PayloadOnline); token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Msg("Failed to publish online status")
		}
		// Subscriptions do not survive a clean-session reconnect.
		if err := b.subscribe(); err != nil {
			log.Warn().Err(err).Msg("Failed to subscribe to mode commands")
		}
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Error().Err(err).Msg("MQTT bridge disconnected")
	})

	b.client = paho.NewClient(opts)
	return b
}

func newBridge(client Client, topics Topics, controller device.Controller, subscriber device.EventSubscriber) *Bridge {
	return &Bridge{
		client:     client,
		topics:     topics,
		controller: controller,
		subscriber: subscriber,
		retryDelay: 5 * time.Second,
		objectIDs:  make(map[string]string),
	}
}

// Connect dials the broker, retrying until it succeeds or ctx ends.
func (b *Bridge) Connect(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		token := b.client.Connect()
		if token.Wait() && token.Error() == nil {
			log.Info().Int("attempt", attempt).Msg("MQTT bridge connection established")
			return nil
		}

		log.Warn().Err(token.Error()).Int("attempt", attempt).Dur("retry_in", b.retryDelay).Msg("MQTT connection failed")
		select {
		case <-ctx.Done():
			return fmt.Errorf("mqtt connect cancelled: %w", ctx.Err())
		case <-time.After(b.retryDelay):
		}
	}
}

// Run announces every known device, then follows controller events until ctx
// is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	events := b.subscriber.Subscribe()
	defer b.subscriber.Unsubscribe(events)

	devices, err := b.controller.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	for _, d := range devices {
		b.announce(ctx, d.ID)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			b.handleEvent(ctx, evt)
		}
	}
}

// Close marks the bridge offline and disconnects.
func (b *Bridge) Close() {
	if !b.client.IsConnected() {
		return
	}
	if err := b.publish(b.topics.Status(), true, PayloadOffline); err != nil {
		log.Warn().Err(err).Msg("Failed to publish offline status")
	}
	b.client.Disconnect(250)
}

func (b *Bridge) subscribe() error {
	token := b.client.Subscribe(b.topics.ModeCommandFilter(), 1, func(_ paho.Client, msg paho.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		b.handleCommand(ctx, msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (b *Bridge) handleEvent(ctx context.Context, evt device.Event) {
	if evt.Device == nil {
		return
	}
	switch evt.Type {
	case device.EventEntityAdded:
		b.announce(ctx, evt.Device.ID)
	case device.EventStateChanged:
		b.publishState(ctx, evt.Device.ID)
	case device.EventUpdateFailed:
		if err := b.publish(b.topics.Availability(evt.Device.ID), true, PayloadOffline); err != nil {
			log.Warn().Err(err).Str("device", evt.Device.ID).Msg("Failed to publish availability")
		}
	}
}

// announce publishes the discovery config of id followed by its state.
func (b *Bridge) announce(ctx context.Context, id string) {
	d, err := b.controller.GetDevice(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("device", id).Msg("Cannot announce unknown device")
		return
	}
	b.mu.Lock()
	b.objectIDs[ObjectID(d.ID)] = d.ID
	b.mu.Unlock()

	state, err := b.controller.GetDeviceState(ctx, d.ID)
	if err != nil {
		log.Warn().Err(err).Str("device", d.ID).Msg("Announcing device without state")
	}

	if err := b.publishJSON(b.topics.Discovery(d.ID), true, BuildDiscovery(b.topics, *d, ModesFromState(state))); err != nil {
		log.Error().Err(err).Str("device", d.ID).Msg("Failed to publish discovery")
		return
	}
	log.Info().Str("device", d.ID).Str("topic", b.topics.Discovery(d.ID)).Msg("Published MQTT discovery")

	if state != nil {
		b.writeState(d.ID, state)
	}
}

func (b *Bridge) publishState(ctx context.Context, id string) {
	state, err := b.controller.GetDeviceState(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("device", id).Msg("Cannot read state for MQTT")
		_ = b.publish(b.topics.Availability(id), true, PayloadOffline)
		return
	}
	b.writeState(id, state)
}

func (b *Bridge) writeState(id string, state device.DeviceState) {
	if err := b.publishJSON(b.topics.State(id), true, state); err != nil {
		log.Warn().Err(err).Str("device", id).Msg("Failed to publish state")
	}
	if err := b.publish(b.topics.Availability(id), true, AvailabilityPayload(state)); err != nil {
		log.Warn().Err(err).Str("device", id).Msg("Failed to publish availability")
	}
}

// handleCommand forwards a mode command payload to the controller.
func (b *Bridge) handleCommand(ctx context.Context, topic string, payload []byte) {
	objectID, ok := b.topics.ParseModeCommand(topic)
	if !ok {
		log.Debug().Str("topic", topic).Msg("Ignoring message on unexpected topic")
		return
	}
	b.mu.Lock()
	id, ok := b.objectIDs[objectID]
	b.mu.Unlock()
	if !ok {
		log.Warn().Str("topic", topic).Msg("Mode command for unknown device")
		return
	}

	mode := FromHAMode(string(payload))
	// The new state is published by the state_changed event of the refresh
	// the command triggers.
	if _, err := b.controller.SetDeviceState(ctx, id, map[string]any{"operation_mode": mode}); err != nil {
		log.Error().Err(err).Str("device", id).Str("mode", mode).Msg("MQTT mode command failed")
		return
	}
	log.Info().Str("device", id).Str("mode", mode).Msg("MQTT mode command applied")
}

func (b *Bridge) publishJSON(topic string, retained bool, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	return b.publish(topic, retained, data)
}

func (b *Bridge) publish(topic string, retained bool, payload any) error {
	token := b.client.Publish(topic, 1, retained, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Package bridge connects the simulation to an MQTT broker: commands arrive
// on one topic and a GeoJSON snapshot of each cycle is published on another.
package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pthm-cable/slamsim/config"
)

// ErrDisabled is returned by Connect when no broker is configured.
var ErrDisabled = errors.New("mqtt bridge disabled: no broker configured")

const (
	connectTimeout = 10 * time.Second
	tokenTimeout   = 2 * time.Second
)

// Connect builds a client from cfg and waits for the first connection.
// An empty broker yields ErrDisabled.
func Connect(cfg config.MQTTConfig) (mqtt.Client, error) {
	if cfg.Broker == "" {
		return nil, ErrDisabled
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "slamsim"
	}
	opts.SetClientID(clientID)

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false)
	opts.SetOrderMatters(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		slog.Info("mqtt connected", "broker", cfg.Broker, "client_id", clientID)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		slog.Info("mqtt reconnecting", "broker", cfg.Broker)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timeout after %v", cfg.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}
	return client, nil
}

// wait resolves a token, treating a timeout as an error.
func wait(token mqtt.Token, what string) error {
	if !token.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("%s: timeout", what)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pthm-cable/slamsim/game"
)

// commandBuffer bounds the number of queued remote commands. Extra commands
// are dropped while the simulation catches up.
const commandBuffer = 64

// commandPayload is the JSON form of a command message. Plain-text payloads
// ("w", "sd", ...) are accepted as well.
type commandPayload struct {
	Direction string `json:"direction"`
}

// CommandSubscriber is a game.CommandSource fed by an MQTT topic.
type CommandSubscriber struct {
	client mqtt.Client
	topic  string

	commands chan game.Direction
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	dropped int
}

// NewCommandSubscriber subscribes to topic and buffers parsed commands.
func NewCommandSubscriber(client mqtt.Client, topic string, qos byte) (*CommandSubscriber, error) {
	s := &CommandSubscriber{
		client:   client,
		topic:    topic,
		commands: make(chan game.Direction, commandBuffer),
		done:     make(chan struct{}),
	}
	if err := wait(client.Subscribe(topic, qos, s.handle), "subscribing to "+topic); err != nil {
		return nil, err
	}
	slog.Info("mqtt command topic subscribed", "topic", topic, "qos", qos)
	return s, nil
}

// ParseCommand decodes a command payload, either plain text or
// {"direction": "..."}.
func ParseCommand(payload []byte) (game.Direction, bool) {
	text := bytes.TrimSpace(payload)
	if len(text) > 0 && text[0] == '{' {
		var p commandPayload
		if err := json.Unmarshal(text, &p); err != nil {
			return game.DirNone, false
		}
		return game.ParseDirection(p.Direction)
	}
	return game.ParseDirection(string(text))
}

func (s *CommandSubscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	dir, ok := ParseCommand(msg.Payload())
	if !ok {
		slog.Warn("ignoring mqtt command", "topic", msg.Topic(), "payload", string(msg.Payload()))
		return
	}
	select {
	case <-s.done:
	case s.commands <- dir:
	default:
		s.mu.Lock()
		s.dropped++
		n := s.dropped
		s.mu.Unlock()
		slog.Warn("mqtt command buffer full", "direction", dir.String(), "dropped", n)
	}
}

// Next blocks until a command arrives. It returns io.EOF after Close.
func (s *CommandSubscriber) Next(ctx context.Context) (game.Direction, error) {
	select {
	case <-ctx.Done():
		return game.DirNone, ctx.Err()
	case <-s.done:
		return game.DirNone, io.EOF
	case dir := <-s.commands:
		return dir, nil
	}
}

// Dropped reports how many commands were discarded on a full buffer.
func (s *CommandSubscriber) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unsubscribes and ends the source.
func (s *CommandSubscriber) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.client.IsConnected() {
			err = wait(s.client.Unsubscribe(s.topic), "unsubscribing from "+s.topic)
		}
	})
	return err
}

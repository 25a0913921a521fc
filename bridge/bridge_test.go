package bridge

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/slamsim/components"
	"github.com/pthm-cable/slamsim/config"
	"github.com/pthm-cable/slamsim/game"
)

func TestConnectDisabledWithoutBroker(t *testing.T) {
	client, err := Connect(config.MQTTConfig{})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    game.Direction
		ok      bool
	}{
		{"w", game.DirUp, true},
		{"  SD\n", game.DirDownRight, true},
		{"aw", game.DirUpLeft, true},
		{`{"direction":"d"}`, game.DirRight, true},
		{`{"direction":""}`, game.DirNone, false},
		{`{"direction":`, game.DirNone, false},
		{"jump", game.DirNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := ParseCommand([]byte(tt.payload))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandSubscriberDeliversInOrder(t *testing.T) {
	client := newMockClient()
	sub, err := NewCommandSubscriber(client, "sim/cmd", 1)
	require.NoError(t, err)

	client.deliver("sim/cmd", []byte("w"))
	client.deliver("sim/cmd", []byte("bogus"))
	client.deliver("sim/cmd", []byte(`{"direction":"a"}`))

	ctx := context.Background()
	d, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.DirUp, d)
	d, err = sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.DirLeft, d)

	require.NoError(t, sub.Close())
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"sim/cmd"}, client.unsubscribed)

	// Closing twice is harmless.
	assert.NoError(t, sub.Close())
}

func TestCommandSubscriberDropsWhenFull(t *testing.T) {
	client := newMockClient()
	sub, err := NewCommandSubscriber(client, "sim/cmd", 0)
	require.NoError(t, err)

	for i := 0; i < commandBuffer+3; i++ {
		client.deliver("sim/cmd", []byte("s"))
	}
	assert.Equal(t, 3, sub.Dropped())
}

func TestCommandSubscriberHonoursContext(t *testing.T) {
	client := newMockClient()
	sub, err := NewCommandSubscriber(client, "sim/cmd", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandSubscriberSubscribeError(t *testing.T) {
	client := newMockClient()
	client.subscribeErr = errors.New("denied")
	_, err := NewCommandSubscriber(client, "sim/cmd", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sim/cmd")
}

func sampleCycle() game.CycleResult {
	return game.CycleResult{
		Cycle:      7,
		Direction:  game.DirRight,
		Legal:      true,
		Truth:      components.Cell{Row: 4, Col: 6},
		Estimate:   components.Point{Row: 4, Col: 3},
		Particles:  []components.Cell{{Row: 4, Col: 3}, {Row: 5, Col: 3}},
		Error:      6,
		Spread:     1,
		ESS:        1.5,
		MapUpdates: 9,
	}
}

func TestStatePublisherSnapshot(t *testing.T) {
	client := newMockClient()
	pub := NewStatePublisher(client, "sim/state", 1, "run-1", 2)

	pub.OnCycle(sampleCycle())

	msgs := client.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sim/state", msgs[0].Topic)
	assert.Equal(t, byte(1), msgs[0].QoS)
	assert.True(t, msgs[0].Retain)

	fc, err := geojson.UnmarshalFeatureCollection(msgs[0].Payload)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	truth := fc.Features[0]
	assert.Equal(t, RoleTruth, truth.Properties.MustString("role"))
	assert.Equal(t, orb.Point{12, 8}, truth.Geometry)

	est := fc.Features[1]
	assert.Equal(t, RoleEstimate, est.Properties.MustString("role"))
	assert.Equal(t, "run-1", est.Properties.MustString("run_id"))
	assert.Equal(t, 7, est.Properties.MustInt("cycle"))
	assert.InDelta(t, 6.0, est.Properties.MustFloat64("error"), 1e-9)

	// The published error matches the planar distance between the features.
	estPt, ok := est.Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, est.Properties.MustFloat64("error"), planar.Distance(truth.Geometry.(orb.Point), estPt), 1e-9)

	cloud, ok := fc.Features[2].Geometry.(orb.MultiPoint)
	require.True(t, ok)
	assert.Equal(t, orb.MultiPoint{{6, 8}, {6, 10}}, cloud)
	assert.Equal(t, 2, fc.Features[2].Properties.MustInt("count"))

	published, failed := pub.Stats()
	assert.Equal(t, 1, published)
	assert.Equal(t, 0, failed)
}

func TestStatePublisherCountsFailures(t *testing.T) {
	client := newMockClient()
	pub := NewStatePublisher(client, "sim/state", 0, "run-1", 1)

	client.setConnected(false)
	pub.OnCycle(sampleCycle())
	assert.ErrorIs(t, pub.Publish(sampleCycle()), mqtt.ErrNotConnected)

	client.setConnected(true)
	client.publishErr = errors.New("quota")
	pub.OnCycle(sampleCycle())

	published, failed := pub.Stats()
	assert.Equal(t, 0, published)
	assert.Equal(t, 2, failed)
	assert.Empty(t, client.messages())
}

func TestBridgeImplementsGameInterfaces(t *testing.T) {
	var _ game.Observer = (*StatePublisher)(nil)
	var _ game.CommandSource = (*CommandSubscriber)(nil)
}

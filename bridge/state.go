package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pthm-cable/slamsim/components"
	"github.com/pthm-cable/slamsim/game"
)

// Feature roles in a state snapshot.
const (
	RoleTruth     = "truth"
	RoleEstimate  = "estimate"
	RoleParticles = "particles"
)

// StatePublisher is a game.Observer that publishes each cycle as a GeoJSON
// FeatureCollection. Coordinates are physical units with x along columns
// and y along rows.
type StatePublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	runID  string
	scale  float64

	mu        sync.Mutex
	published int
	failed    int
}

// NewStatePublisher publishes snapshots of run runID to topic.
func NewStatePublisher(client mqtt.Client, topic string, qos byte, runID string, scale float64) *StatePublisher {
	return &StatePublisher{
		client: client,
		topic:  topic,
		qos:    qos,
		runID:  runID,
		scale:  scale,
	}
}

// OnCycle publishes r. Failures are logged and counted; the simulation is
// never blocked on the broker.
func (p *StatePublisher) OnCycle(r game.CycleResult) {
	if err := p.Publish(r); err != nil {
		p.mu.Lock()
		p.failed++
		p.mu.Unlock()
		slog.Warn("publishing state", "cycle", r.Cycle, "error", err)
		return
	}
	p.mu.Lock()
	p.published++
	p.mu.Unlock()
}

// Publish sends one snapshot.
func (p *StatePublisher) Publish(r game.CycleResult) error {
	if !p.client.IsConnected() {
		return mqtt.ErrNotConnected
	}
	payload, err := p.Snapshot(r).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	// Retained so late subscribers see the latest cycle.
	return wait(p.client.Publish(p.topic, p.qos, true, payload), "publishing to "+p.topic)
}

// Snapshot builds the FeatureCollection for r.
func (p *StatePublisher) Snapshot(r game.CycleResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	truth := geojson.NewFeature(p.point(r.Truth.Point()))
	truth.Properties["role"] = RoleTruth
	truth.Properties["legal"] = r.Legal
	truth.Properties["direction"] = r.Direction.String()
	fc.Append(truth)

	est := geojson.NewFeature(p.point(r.Estimate))
	est.Properties["role"] = RoleEstimate
	est.Properties["run_id"] = p.runID
	est.Properties["cycle"] = r.Cycle
	est.Properties["error"] = r.Error
	est.Properties["spread"] = r.Spread
	est.Properties["ess"] = r.ESS
	est.Properties["degenerate"] = r.Degenerate
	est.Properties["map_updates"] = r.MapUpdates
	fc.Append(est)

	cloud := make(orb.MultiPoint, len(r.Particles))
	for i, c := range r.Particles {
		cloud[i] = p.point(c.Point())
	}
	particles := geojson.NewFeature(cloud)
	particles.Properties["role"] = RoleParticles
	particles.Properties["count"] = len(cloud)
	fc.Append(particles)

	return fc
}

func (p *StatePublisher) point(pt components.Point) orb.Point {
	return orb.Point{pt.Col * p.scale, pt.Row * p.scale}
}

// Stats reports successful and failed publishes.
func (p *StatePublisher) Stats() (published, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published, p.failed
}

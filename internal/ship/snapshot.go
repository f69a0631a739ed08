package ship

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/shipyard/internal/layout"
)

// Snapshot is the numeric record of a ship, free of geometry handles.
type Snapshot struct {
	Seed        string            `json:"seed" yaml:"seed"`
	Fingerprint string            `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Budget      Budget            `json:"budget" yaml:"budget"`
	TotalLength float64           `json:"total_length" yaml:"total_length"`
	RootZ       float64           `json:"root_z" yaml:"root_z"`
	Meshes      int               `json:"meshes" yaml:"meshes"`
	Sections    []SectionSnapshot `json:"sections" yaml:"sections"`
	Thrusters   ThrusterSnapshot  `json:"thrusters" yaml:"thrusters"`
	Engine      EngineSnapshot    `json:"engine" yaml:"engine"`
	Cargo       CargoSnapshot     `json:"cargo" yaml:"cargo"`
	Deck        DeckSnapshot      `json:"deck" yaml:"deck"`
}

// SectionSnapshot is one placed section in chain order, rear first.
type SectionSnapshot struct {
	Kind    SectionKind `json:"kind" yaml:"kind"`
	AttachZ float64     `json:"attach_z" yaml:"attach_z"`
	Length  float64     `json:"length" yaml:"length"`
	Width   float64     `json:"width" yaml:"width"`
	Height  float64     `json:"height" yaml:"height"`
	Mass    float64     `json:"mass" yaml:"mass"`
	Meshes  int         `json:"meshes" yaml:"meshes"`
}

// ThrusterSnapshot records the drawn thruster count, size and nozzle layout.
type ThrusterSnapshot struct {
	Count     int            `json:"count" yaml:"count"`
	Power     float64        `json:"power" yaml:"power"`
	Diameter  float64        `json:"diameter" yaml:"diameter"`
	Layout    layout.Kind    `json:"layout" yaml:"layout"`
	Positions []layout.Point `json:"positions" yaml:"positions"`
}

// EngineSnapshot records the engine block shape. Radii are set only for the cylindrical block.
type EngineSnapshot struct {
	Shape       EngineShape `json:"shape" yaml:"shape"`
	RearRadius  float64     `json:"rear_radius,omitempty" yaml:"rear_radius,omitempty"`
	FrontRadius float64     `json:"front_radius,omitempty" yaml:"front_radius,omitempty"`
}

// CargoSnapshot records the pod design and how the pods were arranged into segments.
type CargoSnapshot struct {
	PodShape       PodShape    `json:"pod_shape" yaml:"pod_shape"`
	PodMass        float64     `json:"pod_mass" yaml:"pod_mass"`
	PodsPerSegment int         `json:"pods_per_segment" yaml:"pods_per_segment"`
	Segments       int         `json:"segments" yaml:"segments"`
	Arrangement    layout.Kind `json:"arrangement" yaml:"arrangement"`
	Gap            float64     `json:"gap" yaml:"gap"`
	Stagger        float64     `json:"stagger" yaml:"stagger"`
	TargetMass     float64     `json:"target_mass" yaml:"target_mass"`
	RealizedMass   float64     `json:"realized_mass" yaml:"realized_mass"`
}

// DeckSnapshot records the command deck design, its window count and quarter-turn orientation.
type DeckSnapshot struct {
	Shape       DeckShape `json:"shape" yaml:"shape"`
	Windows     int       `json:"windows" yaml:"windows"`
	Orientation int       `json:"orientation" yaml:"orientation"`
	Taper       float64   `json:"taper" yaml:"taper"`
}

// Snapshot returns the ship's numeric record including its fingerprint.
func (s *Ship) Snapshot() Snapshot {
	snap := s.snapshot()
	snap.Fingerprint = fingerprint(snap)
	return snap
}

// Fingerprint returns the hex BLAKE2b-256 digest of the canonical snapshot.
func (s *Ship) Fingerprint() string {
	return fingerprint(s.snapshot())
}

func (s *Ship) snapshot() Snapshot {
	snap := Snapshot{
		Seed:        s.Seed,
		Budget:      s.Budget,
		TotalLength: s.TotalLength,
		RootZ:       s.Root.Position.Z,
		Meshes:      s.Root.MeshCount(),
		Thrusters: ThrusterSnapshot{
			Count:     s.Thrusters.Count,
			Power:     s.Thrusters.Power,
			Diameter:  s.Thrusters.Diameter,
			Layout:    s.Thrusters.Layout,
			Positions: s.Thrusters.Positions,
		},
		Engine: EngineSnapshot{
			Shape:       s.Engine.Shape,
			RearRadius:  s.Engine.RearRadius,
			FrontRadius: s.Engine.FrontRadius,
		},
		Cargo: CargoSnapshot{
			PodShape:       s.Cargo.Pod.Shape,
			PodMass:        s.Cargo.Pod.Mass,
			PodsPerSegment: s.Cargo.PodsPerSegment,
			Segments:       s.Cargo.Segments,
			Arrangement:    s.Cargo.Arrangement,
			Gap:            s.Cargo.Gap,
			Stagger:        s.Cargo.Stagger,
			TargetMass:     s.Cargo.TargetMass,
			RealizedMass:   s.Cargo.RealizedMass,
		},
		Deck: DeckSnapshot{
			Shape:       s.Deck.Shape,
			Windows:     len(s.Deck.Windows),
			Orientation: s.Deck.Orientation,
			Taper:       s.Deck.Taper,
		},
	}
	for _, p := range s.Sections {
		snap.Sections = append(snap.Sections, SectionSnapshot{
			Kind:    p.Kind,
			AttachZ: p.AttachZ,
			Length:  p.Section.Length,
			Width:   p.Section.Width,
			Height:  p.Section.Height,
			Mass:    p.Section.Mass,
			Meshes:  p.Section.Mesh.MeshCount(),
		})
	}
	return snap
}

func fingerprint(snap Snapshot) string {
	snap.Fingerprint = ""
	data, err := json.Marshal(snap)
	if err != nil {
		// only reachable with NaN or Inf, which clampDim keeps out
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

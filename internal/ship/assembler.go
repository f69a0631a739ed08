package ship

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// Stage is a step of ship assembly, reported in debug logs.
type Stage int

const (
	StageMassBudgeting Stage = iota
	StageCargoPreflight
	StageSectionChain
	StageCentering
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageMassBudgeting:
		return "mass_budgeting"
	case StageCargoPreflight:
		return "cargo_preflight"
	case StageSectionChain:
		return "section_chain"
	case StageCentering:
		return "centering"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// CargoCapFraction is the most of the ship mass cargo may ever take.
const CargoCapFraction = 0.75

// Budget is how the ship mass was divided.
type Budget struct {
	Total          float64 `json:"total" yaml:"total"`
	CargoFraction  float64 `json:"cargo_fraction" yaml:"cargo_fraction"`
	EngineFraction float64 `json:"engine_fraction" yaml:"engine_fraction"`
	CargoTarget    float64 `json:"cargo_target" yaml:"cargo_target"`
	CargoCap       float64 `json:"cargo_cap" yaml:"cargo_cap"`
	Cargo          float64 `json:"cargo" yaml:"cargo"`
	EngineBlock    float64 `json:"engine_block" yaml:"engine_block"`
	CommandDeck    float64 `json:"command_deck" yaml:"command_deck"`
}

// Placement records where a section's rear face sits before centering.
type Placement struct {
	Kind    SectionKind
	AttachZ float64
	Section *Section
}

// Ship is a fully assembled hull.
type Ship struct {
	Seed      string
	Budget    Budget
	Thrusters *ThrusterSection
	Engine    *EngineBlock
	Cargo     *CargoSection
	Deck      *CommandDeck
	// Sections are in order from stern to bow.
	Sections    []Placement
	TotalLength float64
	// Root holds the sections, shifted so the hull is centred on z = 0.
	Root *geom.Node
}

// Options tune a single generation.
type Options struct {
	// Mass forces the ship mass, clamped to the contract range; zero draws it from the seed.
	Mass float64
}

// Option mutates Options.
type Option func(*Options)

// WithMass forces the ship mass.
func WithMass(mass float64) Option {
	return func(o *Options) { o.Mass = mass }
}

// DrawShipMass returns a mass in [MinShipMass, MaxShipMass], skewed towards small ships.
func DrawShipMass(r *rng.Rand) float64 {
	u := r.Random()
	return MinShipMass + (MaxShipMass-MinShipMass)*math.Pow(u, 2.5)
}

// Generate builds the ship for seed. The same seed and options always give the same ship.
func Generate(seed string, opts ...Option) *Ship {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	seed = NormalizeSeed(seed)
	r := rng.New(seed)

	stage := func(s Stage, args ...any) {
		logger.Debug("Ship generation stage", append([]any{"seed", seed, "stage", s.String()}, args...)...)
	}

	// a forced mass still consumes the draw
	total := DrawShipMass(r)
	if o.Mass > 0 {
		total = math.Max(MinShipMass, math.Min(MaxShipMass, o.Mass))
	}
	cargoFraction := r.Range(0.25, 0.55)
	engineFraction := EngineMassFraction(total, r)
	budget := Budget{
		Total:          total,
		CargoFraction:  cargoFraction,
		EngineFraction: engineFraction,
		CargoTarget:    total * cargoFraction,
		CargoCap:       total * CargoCapFraction,
	}
	stage(StageMassBudgeting, "mass", total)

	cargo := GenerateCargo(CargoRequest{
		TargetMass: budget.CargoTarget,
		LimitMass:  budget.CargoCap,
		ShipMass:   total,
	}, r)
	budget.Cargo = cargo.RealizedMass
	stage(StageCargoPreflight, "target", budget.CargoTarget, "realized", cargo.RealizedMass)

	thrusters := GenerateThrusters(total, r)
	remaining := total - cargo.RealizedMass
	budget.EngineBlock = math.Min(engineFraction*total, 0.75*remaining)
	engine := GenerateEngineBlock(thrusters, budget.EngineBlock, r)
	budget.CommandDeck = total - cargo.RealizedMass - budget.EngineBlock
	deck := GenerateCommandDeck(budget.CommandDeck, r)

	s := &Ship{
		Seed:      seed,
		Budget:    budget,
		Thrusters: thrusters,
		Engine:    engine,
		Cargo:     cargo,
		Deck:      deck,
	}

	root := geom.NewGroup("ship")
	z := 0.0
	for _, sec := range []*Section{&thrusters.Section, &engine.Section, &cargo.Section, &deck.Section} {
		sec.Mesh.SetPosition(0, 0, z)
		root.Add(sec.Mesh)
		s.Sections = append(s.Sections, Placement{Kind: sec.Kind, AttachZ: z, Section: sec})
		z += sec.Length
	}
	s.TotalLength = z
	stage(StageSectionChain, "length", z)

	root.SetPosition(0, 0, -z/2)
	s.Root = root
	stage(StageCentering)

	stage(StageDone, "meshes", root.MeshCount())
	return s
}

// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Fluid        FluidConfig        `yaml:"fluid"`
	Fields       FieldsConfig       `yaml:"fields"`
	Spatial      SpatialConfig      `yaml:"spatial"`
	Particles    ParticlesConfig    `yaml:"particles"`
	Energy       EnergyConfig       `yaml:"energy"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Brain        BrainConfig        `yaml:"brain"`
	Population   PopulationConfig   `yaml:"population"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world-level parameters.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DT     float64 `yaml:"dt"`
	Wrap   bool    `yaml:"wrap"`
	GridN  int     `yaml:"grid_n"`
}

// FluidConfig holds Stable-Fluids solver parameters.
type FluidConfig struct {
	DiffusionRate   float64 `yaml:"diffusion_rate"`
	VelocityIters   int     `yaml:"velocity_iters"`
	PressureIters   int     `yaml:"pressure_iters"`
	DensityIters    int     `yaml:"density_iters"`
	FadeRate        float64 `yaml:"fade_rate"`
	DyePullRate     float64 `yaml:"dye_pull_rate"`
	MaxVelocityComp float64 `yaml:"max_velocity_component"`
}

// FieldsConfig holds scalar field parameters (nutrient, light, viscosity).
type FieldsConfig struct {
	NutrientMin        float64     `yaml:"nutrient_min"`
	NutrientMax        float64     `yaml:"nutrient_max"`
	LightMin           float64     `yaml:"light_min"`
	LightMax           float64     `yaml:"light_max"`
	ViscosityMin       float64     `yaml:"viscosity_min"`
	ViscosityMax       float64     `yaml:"viscosity_max"`
	GlobalNutrientMult float64     `yaml:"global_nutrient_multiplier"`
	GlobalLightMult    float64     `yaml:"global_light_multiplier"`
	MinNutrient        float64     `yaml:"min_nutrient"`
	Noise              NoiseConfig `yaml:"noise"`
}

// NoiseConfig holds the tiled-noise modulation parameters driving cyclic
// variation of the scalar fields, grounded on the teacher's ResourceField
// animated-potential noise settings.
type NoiseConfig struct {
	Scale      float64 `yaml:"scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
	Contrast   float64 `yaml:"contrast"`
	TimeSpeed  float64 `yaml:"time_speed"`
}

// SpatialConfig holds broad-phase grid parameters.
type SpatialConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// ParticlesConfig holds particle-system parameters.
type ParticlesConfig struct {
	Floor            int     `yaml:"floor"`
	PerSecond        float64 `yaml:"per_second"`
	FluidInfluence   float64 `yaml:"fluid_influence"`
	Jitter           float64 `yaml:"jitter"`
	DefaultLifeDecay float64 `yaml:"default_life_decay"`
	DefaultSize      float64 `yaml:"default_size"`
}

// EnergyConfig holds per-node-type energy economics parameters.
type EnergyConfig struct {
	BaseCost              float64 `yaml:"base_cost"`
	EmitterCost           float64 `yaml:"emitter_cost"`
	SwimmerCost           float64 `yaml:"swimmer_cost"`
	EaterCost             float64 `yaml:"eater_cost"`
	PredatorCost          float64 `yaml:"predator_cost"`
	JetCost               float64 `yaml:"jet_cost"`
	PhotosyntheticCost    float64 `yaml:"photosynthetic_cost"`
	NeuronBaseCost        float64 `yaml:"neuron_base_cost"`
	NeuronHiddenCostScale float64 `yaml:"neuron_hidden_cost_scale"`
	GrabbingCost          float64 `yaml:"grabbing_cost"`
	EyeCost               float64 `yaml:"eye_cost"`
	PhotosynthEfficiency  float64 `yaml:"photosynth_efficiency"`
	PoisonStrength        float64 `yaml:"poison_strength"`
	EnergyPerParticle     float64 `yaml:"energy_per_particle"`
	PredationEnergyBase   float64 `yaml:"predation_energy_base"`
	PredationEnergyBonus  float64 `yaml:"predation_energy_bonus"`
	EatingRadiusBase      float64 `yaml:"eating_radius_base"`
	EatingRadiusBonus     float64 `yaml:"eating_radius_bonus"`
}

// PhysicsConfig holds mass-spring / Verlet integration parameters.
type PhysicsConfig struct {
	MaxStretchFactor      float64 `yaml:"max_stretch_factor"`
	MaxDisplacement       float64 `yaml:"max_displacement"`
	MaxSpanPerPoint       float64 `yaml:"max_span_per_point"`
	RepulsionRadiusFactor float64 `yaml:"repulsion_radius_factor"`
	RepulsionStrength     float64 `yaml:"repulsion_strength"`
	BodyFluidEntrainment  float64 `yaml:"body_fluid_entrainment"`
	FluidCurrentStrength  float64 `yaml:"fluid_current_strength"`
	Restitution           float64 `yaml:"restitution"`
	RigidStiffness        float64 `yaml:"rigid_stiffness"`
	RigidDamping          float64 `yaml:"rigid_damping"`
	MaxSwimmerMag         float64 `yaml:"max_swimmer_mag"`
	MaxJetMag             float64 `yaml:"max_jet_mag"`
}

// ReproductionConfig holds reproduction/placement parameters.
type ReproductionConfig struct {
	OffspringInitialShare    float64 `yaml:"offspring_initial_share"`
	PlacementAttempts        int     `yaml:"placement_attempts"`
	Clearance                float64 `yaml:"clearance"`
	FailedCooldownTicks      int     `yaml:"failed_cooldown_ticks"`
	AdditionalCostFactor     float64 `yaml:"additional_cost_factor"`
	ReproductionCooldownFrac float64 `yaml:"reproduction_cooldown_fraction"`
}

// MutationConfig holds blueprint mutation-operator probabilities.
type MutationConfig struct {
	GlobalRateModifier  float64 `yaml:"global_rate_modifier"`
	RatePercent         float64 `yaml:"rate_percent"`
	ParametricProb      float64 `yaml:"parametric_prob"`
	CategoricalProb     float64 `yaml:"categorical_prob"`
	SpringProb          float64 `yaml:"spring_prob"`
	AddPointProb        float64 `yaml:"add_point_prob"`
	DeleteSpringProb    float64 `yaml:"delete_spring_prob"`
	AddSpringProb       float64 `yaml:"add_spring_prob"`
	SubdivideSpringProb float64 `yaml:"subdivide_spring_prob"`
	BodyScaleProb       float64 `yaml:"body_scale_prob"`
	MinNewPointSprings  int     `yaml:"min_new_point_springs"`
	MaxNewPointSprings  int     `yaml:"max_new_point_springs"`
}

// BrainConfig holds neural-network and REINFORCE training parameters.
type BrainConfig struct {
	HiddenMin               int     `yaml:"hidden_min"`
	HiddenMax               int     `yaml:"hidden_max"`
	EyeInputs               int     `yaml:"eye_inputs"`
	FluidSensorInputs       int     `yaml:"fluid_sensor_inputs"`
	NeuralInputSizeBase     int     `yaml:"neural_input_size_base"`
	TrainingIntervalFrames  int     `yaml:"training_interval_frames"`
	DiscountFactorGamma     float64 `yaml:"discount_factor_gamma"`
	LearningRate            float64 `yaml:"learning_rate"`
	MaxExperienceBufferSize int     `yaml:"max_experience_buffer_size"`
	StdDevEpsilon           float64 `yaml:"stddev_epsilon"`
	NeuronChance            float64 `yaml:"neuron_chance"`
	ReproRewardConstant     float64 `yaml:"repro_reward_constant"`
	ParticleProximityScale  float64 `yaml:"particle_proximity_scale"`
	EnergySecondDerivScale  float64 `yaml:"energy_second_deriv_scale"`
}

// PopulationConfig holds population floor/ceiling parameters.
type PopulationConfig struct {
	Floor   int `yaml:"floor"`
	Ceiling int `yaml:"ceiling"`
}

// DerivedConfig holds values computed once after load.
type DerivedConfig struct {
	DT32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// SetForTest installs cfg as the global config, for use from test helpers
// that need a deterministic config without touching the embedded defaults.
func SetForTest(cfg *Config) { global = cfg }

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.World.DT)
}

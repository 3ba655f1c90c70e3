package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golangdaddy/turbotrails/pkg/models/profile"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "turbotrails.cfg.json"

// ErrNoConfigFile is returned by Load when the config directory has no config file.
// Callers may continue on the defaults.
var ErrNoConfigFile = errors.New("config file not found")

// SessionConfig holds per-run rules.
type SessionConfig struct {
	StartProfile     string        `json:"startProfile" mapstructure:"startProfile"`
	DistancePerPoint float64       `json:"distancePerPoint" mapstructure:"distancePerPoint"`
	PointsPerToken   int           `json:"pointsPerToken" mapstructure:"pointsPerToken"`
	TimeStep         float64       `json:"timeStep" mapstructure:"timeStep"`
	DiagnosticsEvery time.Duration `json:"diagnosticsEvery" mapstructure:"diagnosticsEvery"`
}

// VehicleConfig holds the bike body and control forces.
type VehicleConfig struct {
	Mass             float64       `json:"mass" mapstructure:"mass"`
	HalfWidth        float64       `json:"halfWidth" mapstructure:"halfWidth"`
	HalfLength       float64       `json:"halfLength" mapstructure:"halfLength"`
	HalfHeight       float64       `json:"halfHeight" mapstructure:"halfHeight"`
	StallSpeedKmh    float64       `json:"stallSpeedKmh" mapstructure:"stallSpeedKmh"`
	StallImpulse     float64       `json:"stallImpulse" mapstructure:"stallImpulse"`
	BrakeForce       float64       `json:"brakeForce" mapstructure:"brakeForce"`
	LateralForce     float64       `json:"lateralForce" mapstructure:"lateralForce"`
	LateralDamping   float64       `json:"lateralDamping" mapstructure:"lateralDamping"`
	HandbrakeDamping float64       `json:"handbrakeDamping" mapstructure:"handbrakeDamping"`
	CruiseForce      float64       `json:"cruiseForce" mapstructure:"cruiseForce"`
	NitroForce       float64       `json:"nitroForce" mapstructure:"nitroForce"`
	NitroCooldown    time.Duration `json:"nitroCooldown" mapstructure:"nitroCooldown"`
	NitroCharges     int           `json:"nitroCharges" mapstructure:"nitroCharges"`
	GroundRayLift    float64       `json:"groundRayLift" mapstructure:"groundRayLift"`
	GroundRayLength  float64       `json:"groundRayLength" mapstructure:"groundRayLength"`
}

// PhysicsConfig holds world integration constants.
type PhysicsConfig struct {
	Gravity        float64 `json:"gravity" mapstructure:"gravity"`
	LinearDamping  float64 `json:"linearDamping" mapstructure:"linearDamping"`
	GroundFriction float64 `json:"groundFriction" mapstructure:"groundFriction"`
	Iterations     int     `json:"iterations" mapstructure:"iterations"`
}

// TrackConfig holds track generation and containment settings.
type TrackConfig struct {
	SegmentLength      float64 `json:"segmentLength" mapstructure:"segmentLength"`
	HalfWidth          float64 `json:"halfWidth" mapstructure:"halfWidth"`
	Thickness          float64 `json:"thickness" mapstructure:"thickness"`
	InitialSegments    int     `json:"initialSegments" mapstructure:"initialSegments"`
	Lookahead          float64 `json:"lookahead" mapstructure:"lookahead"`
	ObstacleChance     float64 `json:"obstacleChance" mapstructure:"obstacleChance"`
	ObstacleSpread     float64 `json:"obstacleSpread" mapstructure:"obstacleSpread"`
	SoftLimit          float64 `json:"softLimit" mapstructure:"softLimit"`
	HardLimit          float64 `json:"hardLimit" mapstructure:"hardLimit"`
	CenteringStiffness float64 `json:"centeringStiffness" mapstructure:"centeringStiffness"`
	Seed               int64   `json:"seed" mapstructure:"seed"`
}

// CrashConfig holds the crash rule and ragdoll tuning.
type CrashConfig struct {
	SpeedThresholdKmh   float64       `json:"speedThresholdKmh" mapstructure:"speedThresholdKmh"`
	Radius              float64       `json:"radius" mapstructure:"radius"`
	Lives               int           `json:"lives" mapstructure:"lives"`
	RespawnDelay        time.Duration `json:"respawnDelay" mapstructure:"respawnDelay"`
	RespawnDelayNoRider time.Duration `json:"respawnDelayNoRider" mapstructure:"respawnDelayNoRider"`
	RespawnAhead        float64       `json:"respawnAhead" mapstructure:"respawnAhead"`
	RiderMass           float64       `json:"riderMass" mapstructure:"riderMass"`
	RiderLift           float64       `json:"riderLift" mapstructure:"riderLift"`
	EjectSpread         float64       `json:"ejectSpread" mapstructure:"ejectSpread"`
	EjectUpMin          float64       `json:"ejectUpMin" mapstructure:"ejectUpMin"`
	EjectUpMax          float64       `json:"ejectUpMax" mapstructure:"ejectUpMax"`
}

// CameraConfig holds the two camera rigs and the lens.
type CameraConfig struct {
	ChaseBack      float64 `json:"chaseBack" mapstructure:"chaseBack"`
	ChaseHeight    float64 `json:"chaseHeight" mapstructure:"chaseHeight"`
	CockpitForward float64 `json:"cockpitForward" mapstructure:"cockpitForward"`
	CockpitHeight  float64 `json:"cockpitHeight" mapstructure:"cockpitHeight"`
	LookAhead      float64 `json:"lookAhead" mapstructure:"lookAhead"`
	FieldOfView    float64 `json:"fieldOfView" mapstructure:"fieldOfView"`
	Near           float64 `json:"near" mapstructure:"near"`
	Far            float64 `json:"far" mapstructure:"far"`
}

// AssetsConfig holds where bike models are loaded from.
type AssetsConfig struct {
	BikeDir string `json:"bikeDir" mapstructure:"bikeDir"`
}

// Settings is the full typed configuration.
type Settings struct {
	LogLevel string        `json:"logLevel" mapstructure:"logLevel"`
	Session  SessionConfig `json:"session" mapstructure:"session"`
	Vehicle  VehicleConfig `json:"vehicle" mapstructure:"vehicle"`
	Physics  PhysicsConfig `json:"physics" mapstructure:"physics"`
	Track    TrackConfig   `json:"track" mapstructure:"track"`
	Crash    CrashConfig   `json:"crash" mapstructure:"crash"`
	Camera   CameraConfig  `json:"camera" mapstructure:"camera"`
	Assets   AssetsConfig  `json:"assets" mapstructure:"assets"`
	Profiles profile.Table `json:"profiles" mapstructure:"profiles"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		LogLevel: "info",
		Session: SessionConfig{
			StartProfile:     "sport",
			DistancePerPoint: 100,
			PointsPerToken:   10,
			TimeStep:         1.0 / 60.0,
			DiagnosticsEvery: time.Second,
		},
		Vehicle: VehicleConfig{
			Mass:             30,
			HalfWidth:        1,
			HalfLength:       2,
			HalfHeight:       0.5,
			StallSpeedKmh:    2,
			StallImpulse:     120,
			BrakeForce:       2500,
			LateralForce:     3500,
			LateralDamping:   0.9,
			HandbrakeDamping: 0.9,
			CruiseForce:      300,
			NitroForce:       4500,
			NitroCooldown:    1200 * time.Millisecond,
			NitroCharges:     3,
			GroundRayLift:    0.5,
			GroundRayLength:  2,
		},
		Physics: PhysicsConfig{
			Gravity:        -30,
			LinearDamping:  0.1,
			GroundFriction: 0.12,
			Iterations:     10,
		},
		Track: TrackConfig{
			SegmentLength:      100,
			HalfWidth:          10,
			Thickness:          0.5,
			InitialSegments:    10,
			Lookahead:          500,
			ObstacleChance:     0.4,
			ObstacleSpread:     7.5,
			SoftLimit:          0.9,
			HardLimit:          0.98,
			CenteringStiffness: 160,
		},
		Crash: CrashConfig{
			SpeedThresholdKmh:   80,
			Radius:              3,
			Lives:               3,
			RespawnDelay:        3000 * time.Millisecond,
			RespawnDelayNoRider: 800 * time.Millisecond,
			RespawnAhead:        10,
			RiderMass:           70,
			RiderLift:           1.5,
			EjectSpread:         10,
			EjectUpMin:          5,
			EjectUpMax:          20,
		},
		Camera: CameraConfig{
			ChaseBack:      15,
			ChaseHeight:    8,
			CockpitForward: 1,
			CockpitHeight:  2,
			LookAhead:      10,
			FieldOfView:    75,
			Near:           0.1,
			Far:            1000,
		},
		Assets: AssetsConfig{
			BikeDir: "assets/bike",
		},
		Profiles: profile.Defaults(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("logLevel", d.LogLevel)

	v.SetDefault("session.startProfile", d.Session.StartProfile)
	v.SetDefault("session.distancePerPoint", d.Session.DistancePerPoint)
	v.SetDefault("session.pointsPerToken", d.Session.PointsPerToken)
	v.SetDefault("session.timeStep", d.Session.TimeStep)
	v.SetDefault("session.diagnosticsEvery", d.Session.DiagnosticsEvery)

	v.SetDefault("vehicle.mass", d.Vehicle.Mass)
	v.SetDefault("vehicle.halfWidth", d.Vehicle.HalfWidth)
	v.SetDefault("vehicle.halfLength", d.Vehicle.HalfLength)
	v.SetDefault("vehicle.halfHeight", d.Vehicle.HalfHeight)
	v.SetDefault("vehicle.stallSpeedKmh", d.Vehicle.StallSpeedKmh)
	v.SetDefault("vehicle.stallImpulse", d.Vehicle.StallImpulse)
	v.SetDefault("vehicle.brakeForce", d.Vehicle.BrakeForce)
	v.SetDefault("vehicle.lateralForce", d.Vehicle.LateralForce)
	v.SetDefault("vehicle.lateralDamping", d.Vehicle.LateralDamping)
	v.SetDefault("vehicle.handbrakeDamping", d.Vehicle.HandbrakeDamping)
	v.SetDefault("vehicle.cruiseForce", d.Vehicle.CruiseForce)
	v.SetDefault("vehicle.nitroForce", d.Vehicle.NitroForce)
	v.SetDefault("vehicle.nitroCooldown", d.Vehicle.NitroCooldown)
	v.SetDefault("vehicle.nitroCharges", d.Vehicle.NitroCharges)
	v.SetDefault("vehicle.groundRayLift", d.Vehicle.GroundRayLift)
	v.SetDefault("vehicle.groundRayLength", d.Vehicle.GroundRayLength)

	v.SetDefault("physics.gravity", d.Physics.Gravity)
	v.SetDefault("physics.linearDamping", d.Physics.LinearDamping)
	v.SetDefault("physics.groundFriction", d.Physics.GroundFriction)
	v.SetDefault("physics.iterations", d.Physics.Iterations)

	v.SetDefault("track.segmentLength", d.Track.SegmentLength)
	v.SetDefault("track.halfWidth", d.Track.HalfWidth)
	v.SetDefault("track.thickness", d.Track.Thickness)
	v.SetDefault("track.initialSegments", d.Track.InitialSegments)
	v.SetDefault("track.lookahead", d.Track.Lookahead)
	v.SetDefault("track.obstacleChance", d.Track.ObstacleChance)
	v.SetDefault("track.obstacleSpread", d.Track.ObstacleSpread)
	v.SetDefault("track.softLimit", d.Track.SoftLimit)
	v.SetDefault("track.hardLimit", d.Track.HardLimit)
	v.SetDefault("track.centeringStiffness", d.Track.CenteringStiffness)
	v.SetDefault("track.seed", d.Track.Seed)

	v.SetDefault("crash.speedThresholdKmh", d.Crash.SpeedThresholdKmh)
	v.SetDefault("crash.radius", d.Crash.Radius)
	v.SetDefault("crash.lives", d.Crash.Lives)
	v.SetDefault("crash.respawnDelay", d.Crash.RespawnDelay)
	v.SetDefault("crash.respawnDelayNoRider", d.Crash.RespawnDelayNoRider)
	v.SetDefault("crash.respawnAhead", d.Crash.RespawnAhead)
	v.SetDefault("crash.riderMass", d.Crash.RiderMass)
	v.SetDefault("crash.riderLift", d.Crash.RiderLift)
	v.SetDefault("crash.ejectSpread", d.Crash.EjectSpread)
	v.SetDefault("crash.ejectUpMin", d.Crash.EjectUpMin)
	v.SetDefault("crash.ejectUpMax", d.Crash.EjectUpMax)

	v.SetDefault("camera.chaseBack", d.Camera.ChaseBack)
	v.SetDefault("camera.chaseHeight", d.Camera.ChaseHeight)
	v.SetDefault("camera.cockpitForward", d.Camera.CockpitForward)
	v.SetDefault("camera.cockpitHeight", d.Camera.CockpitHeight)
	v.SetDefault("camera.lookAhead", d.Camera.LookAhead)
	v.SetDefault("camera.fieldOfView", d.Camera.FieldOfView)
	v.SetDefault("camera.near", d.Camera.Near)
	v.SetDefault("camera.far", d.Camera.Far)

	v.SetDefault("assets.bikeDir", d.Assets.BikeDir)

	for key, p := range d.Profiles {
		v.SetDefault("profiles."+key+".maxSpeedKmh", p.MaxSpeedKmh)
		v.SetDefault("profiles."+key+".baseThrust", p.BaseThrust)
		v.SetDefault("profiles."+key+".boostThrust", p.BoostThrust)
		v.SetDefault("profiles."+key+".accelerationExponent", p.AccelerationExponent)
	}
}

// Load reads configuration from the JSON config file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults(viper.GetViper())

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", ErrNoConfigFile)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// Current decodes the global viper state into Settings.
func Current() (Settings, error) {
	return decode(viper.GetViper())
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	for key, p := range s.Profiles {
		p.Key = key
		s.Profiles[key] = p
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the simulation cannot run with.
func (s Settings) Validate() error {
	if s.Session.TimeStep <= 0 {
		return fmt.Errorf("session.timeStep must be positive, got %v", s.Session.TimeStep)
	}
	if s.Vehicle.Mass <= 0 {
		return fmt.Errorf("vehicle.mass must be positive, got %v", s.Vehicle.Mass)
	}
	if s.Track.SegmentLength <= 0 || s.Track.HalfWidth <= 0 {
		return fmt.Errorf("track segment length and half width must be positive")
	}
	if s.Track.InitialSegments < 1 {
		return fmt.Errorf("track.initialSegments must be at least 1, got %d", s.Track.InitialSegments)
	}
	if s.Track.Lookahead <= 0 {
		return fmt.Errorf("track.lookahead must be positive, got %v", s.Track.Lookahead)
	}
	if s.Crash.Lives < 1 {
		return fmt.Errorf("crash.lives must be at least 1, got %d", s.Crash.Lives)
	}
	if len(s.Profiles) == 0 {
		return fmt.Errorf("no vehicle profiles configured")
	}
	for key, p := range s.Profiles {
		p.Key = key
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if _, err := s.Profiles.Lookup(s.Session.StartProfile); err != nil {
		return fmt.Errorf("session.startProfile: %w", err)
	}
	return nil
}

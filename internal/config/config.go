package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the optional settings file read from the working directory.
const DefaultPath = "rainyday.toml"

var ErrNoLights = errors.New("config: at least one light is required")

// Light is a directional-style light. Position doubles as the direction the
// light comes from. Radius is kept for a future point-light falloff.
type Light struct {
	Position  mgl32.Vec3 `toml:"position"`
	Color     mgl32.Vec3 `toml:"color"`
	Intensity float32    `toml:"intensity"`
	Radius    float32    `toml:"radius"`
}

// Energy returns the radiance fed to the shading program. The physically based
// program expects the extra factor of pi folded in.
func (l Light) Energy(physicallyBased bool) mgl32.Vec3 {
	e := l.Color.Mul(l.Intensity)
	if physicallyBased {
		e = e.Mul(math32.Pi)
	}
	return e
}

// Material holds the reflectance terms shared by the Blinn-Phong and PBR
// shading paths.
type Material struct {
	ReflectionColor     mgl32.Vec3 `toml:"reflection_color"`
	AmbientReflectance  float32    `toml:"ambient_reflectance"`
	DiffuseReflectance  float32    `toml:"diffuse_reflectance"`
	SpecularReflectance float32    `toml:"specular_reflectance"`
	SpecularExponent    float32    `toml:"specular_exponent"`
	Roughness           float32    `toml:"roughness"`
	Metalness           float32    `toml:"metalness"`
}

// Rain groups the particle tunables. Forward biases the rain box in front of
// the camera so drops are not wasted behind it.
type Rain struct {
	Count          int        `toml:"count"`
	BoxSize        float32    `toml:"box_size"`
	SplashQuadSize float32    `toml:"splash_quad_size"`
	SplashSpeed    float32    `toml:"splash_speed"`
	Forward        mgl32.Vec3 `toml:"forward"`
	Velocity       mgl32.Vec3 `toml:"velocity"`
}

// Params is the live parameter store read by every pass each frame. Only the
// panel writes to it once rendering has started.
type Params struct {
	AmbientColor     mgl32.Vec3 `toml:"ambient_color"`
	AmbientIntensity float32    `toml:"ambient_intensity"`
	Paint            Material   `toml:"paint"`
	Lights           []Light    `toml:"lights"`
	Rain             Rain       `toml:"rain"`
}

// Ambient is the ambient color scaled by its intensity.
func (p *Params) Ambient() mgl32.Vec3 {
	return p.AmbientColor.Mul(p.AmbientIntensity)
}

// Primary returns light 0.
func (p *Params) Primary() *Light {
	return &p.Lights[0]
}

func (p *Params) Validate() error {
	if len(p.Lights) == 0 {
		return ErrNoLights
	}
	for i, l := range p.Lights {
		if l.Intensity < 0 {
			return fmt.Errorf("config: light %d has negative intensity %v", i, l.Intensity)
		}
	}
	if p.Rain.BoxSize <= 0 {
		return fmt.Errorf("config: rain box size must be positive, got %v", p.Rain.BoxSize)
	}
	if p.Rain.Count <= 0 {
		return fmt.Errorf("config: rain count must be positive, got %d", p.Rain.Count)
	}
	return nil
}

// App holds process settings that are fixed once the window is open.
type App struct {
	Title         string  `toml:"title"`
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	FrameInterval float32 `toml:"frame_interval"` // seconds
	AssetRoot     string  `toml:"asset_root"`
	ShaderDir     string  `toml:"shader_dir"` // empty uses the embedded sources
	HotReload     bool    `toml:"hot_reload"`
	Debug         bool    `toml:"debug"`
	SkyboxFaceExt string  `toml:"skybox_face_ext"`
	Shading       string  `toml:"shading"`    // "pbr" or "blinn-phong"
	MeshCache     string  `toml:"mesh_cache"` // empty parses every OBJ at startup
}

// MinFrameTime converts FrameInterval to a duration, rounded to the
// microsecond so float32 settings such as 0.02 map to exact intervals.
func (a App) MinFrameTime() time.Duration {
	return time.Duration(math.Round(float64(a.FrameInterval)*1e6)) * time.Microsecond
}

type Config struct {
	App    App    `toml:"app"`
	Params Params `toml:"params"`
}

// Default returns the startup configuration of the demo.
func Default() Config {
	return Config{
		App: App{
			Title:         "Rainy day",
			Width:         1280,
			Height:        720,
			FrameInterval: 0.02,
			AssetRoot:     ".",
			SkyboxFaceExt: ".png",
			Shading:       "pbr",
		},
		Params: Params{
			AmbientColor:     mgl32.Vec3{1, 1, 1},
			AmbientIntensity: 0.25,
			Paint: Material{
				ReflectionColor:     mgl32.Vec3{1, 0.01, 0.01},
				AmbientReflectance:  0.75,
				DiffuseReflectance:  0.75,
				SpecularReflectance: 0.5,
				SpecularExponent:    10,
				Roughness:           0.5,
				Metalness:           0.5,
			},
			Lights: []Light{
				{Position: mgl32.Vec3{-15.9, 14.7, 2.7}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.6},
			},
			Rain: Rain{
				Count:          10000,
				BoxSize:        30,
				SplashQuadSize: 0.05,
				SplashSpeed:    0.255,
				Forward:        mgl32.Vec3{2, 0, -0.01},
				Velocity:       mgl32.Vec3{-1, -9.82, 0},
			},
		},
	}
}

// Load overlays the TOML file at path on top of Default. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	// A [[params.lights]] list replaces the default lights instead of extending them.
	defaults := cfg.Params.Lights
	cfg.Params.Lights = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Params.Lights == nil {
		cfg.Params.Lights = defaults
	}
	if err := cfg.Params.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"sort"
)

var skyFaces = [6]string{
	"skybox/right.png",
	"skybox/left.png",
	"skybox/top.png",
	"skybox/bottom.png",
	"skybox/front.png",
	"skybox/back.png",
}

var spinAxis = [3]float32{0.5, 1, 0}

// presets mirror the watch faces the renderer grew out of, one per primitive.
var presets = map[string]func(c *Config){
	"square": func(c *Config) {
		c.Objects = []ObjectConfig{{Kind: "square", Axis: spinAxis, Texture: "textures/bg.png"}}
	},
	"cube": func(c *Config) {
		c.Objects = []ObjectConfig{{Kind: "cube", Axis: spinAxis, Texture: "textures/bg.png"}}
	},
	"texture-cube": func(c *Config) {
		c.Objects = []ObjectConfig{{Kind: "texture-cube", Axis: spinAxis, Texture: "textures/checker.png", ClockText: true}}
	},
	"mirror": func(c *Config) {
		c.Objects = []ObjectConfig{{Kind: "mirror-cube", Axis: spinAxis}}
		c.Skybox = SkyboxConfig{Enabled: true, Faces: skyFaces}
	},
	"skybox": func(c *Config) {
		c.Objects = []ObjectConfig{
			{Kind: "cube", Axis: spinAxis, Translation: [3]float32{-1, 0, 0}, SpinScaledByX: true, Texture: "textures/bg.png"},
			{Kind: "texture-cube", Axis: spinAxis, Translation: [3]float32{1, 0, 0}, SpinScaledByX: true, Texture: "textures/checker.png"},
		}
		c.Skybox = SkyboxConfig{Enabled: true, Faces: skyFaces}
		c.Camera.OrbitSpeed = 10
	},
}

// Preset returns Default() reshaped into one of the built-in scenes.
func Preset(name string) (*Config, error) {
	apply, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q, have %v", name, PresetNames())
	}
	cfg := Default()
	apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

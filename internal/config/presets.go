package config

import "sort"

// Presets are named playback settings.
var Presets = map[string]PlaybackConfig{
	"smooth":  {IntervalMs: 30, SkipRate: 1},
	"slow":    {IntervalMs: 200, SkipRate: 1},
	"fast":    {IntervalMs: 10, SkipRate: 5},
	"survey":  {IntervalMs: 1, SkipRate: 25},
	"present": {IntervalMs: 60, SkipRate: 2, Autoplay: true},
}

func GetPreset(name string) *PlaybackConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

// Apply copies the named preset into the playback section.
func (c *Config) Apply(preset string) bool {
	p := GetPreset(preset)
	if p == nil {
		return false
	}
	c.Playback = *p
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package tabgen

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/tabgen/blob"
)

// Settings control table generation.
type Settings struct {
	ElementSize blob.ElementSize // byte width of runtime table elements
	Compression blob.Method      // compression method for embedded tables
	Optimise    bool             // run the parse graph optimiser
}

// DefaultSettings returns settings for 16-bit tables, automatic compression and
// an enabled optimiser.
func DefaultSettings() Settings {
	return Settings{
		ElementSize: blob.U16,
		Compression: blob.Auto,
		Optimise:    true,
	}
}

func (s Settings) String() string {
	return fmt.Sprintf("settings{size=%s, compression=%s, optimise=%v}", s.ElementSize, s.Compression, s.Optimise)
}

// SettingsFromConfig reads settings from the global configuration.
// Recognized keys are
//
//     tabgen.element-size   1, 2 or 4
//     tabgen.compression    none, simple, ctb or auto
//     tabgen.no-optimise    disables the parse graph optimiser
//
// Missing keys leave the defaults untouched. SettingsFromConfig is meant for
// hosts which initialize gconf themselves; the tabgen command reads its settings
// from flags with DecodeSettings.
func SettingsFromConfig() (Settings, error) {
	s := DefaultSettings()
	if n := gconf.GetInt("tabgen.element-size"); n != 0 {
		size, err := blob.ParseElementSize(n)
		if err != nil {
			return s, err
		}
		s.ElementSize = size
	}
	m, err := blob.ParseMethod(gconf.GetString("tabgen.compression"))
	if err != nil {
		return s, err
	}
	s.Compression = m
	s.Optimise = !gconf.GetBool("tabgen.no-optimise")
	tracer().Debugf("configured %v", s)
	return s, nil
}

// rawSettings is the decoding target for settings maps.
type rawSettings struct {
	ElementSize int    `mapstructure:"element-size"`
	Compression string `mapstructure:"compression"`
	NoOptimise  bool   `mapstructure:"no-optimise"`
}

// DecodeSettings decodes settings from a generic map, as produced by JSON or YAML
// decoders. Values are weakly typed, i.e. "2" is accepted as an element size.
func DecodeSettings(m map[string]interface{}) (Settings, error) {
	s := DefaultSettings()
	var raw rawSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(m); err != nil {
		return s, fmt.Errorf("decoding settings: %w", err)
	}
	if raw.ElementSize != 0 {
		size, err := blob.ParseElementSize(raw.ElementSize)
		if err != nil {
			return s, err
		}
		s.ElementSize = size
	}
	method, err := blob.ParseMethod(raw.Compression)
	if err != nil {
		return s, err
	}
	s.Compression = method
	s.Optimise = !raw.NoOptimise
	return s, nil
}

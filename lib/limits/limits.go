// Package limits carries the frequency and power limits of the APSIN
// hardware variants. The driver defaults to the most conservative variant;
// programs controlling expanded-option hardware look their model up here (or
// in a YAML file) and widen the driver's limits to match.
package limits

import (
	"fmt"
	"os"

	"github.com/gotmc/apsin"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Variant holds the hardware limits of one model/option combination.
type Variant struct {
	Frequency Range `yaml:"frequency"` // Hz
	Power     Range `yaml:"power"`     // dBm
}

// Builtin lists the limits of the stock APSIN models. Instruments with the
// 9K option reach down to 9 kHz; describe those in a YAML file passed to
// Load.
var Builtin = map[string]Variant{
	"APSIN3000": {Frequency: Range{100e3, 3.3e9}, Power: Range{-20, 13}},
	"APSIN6000": {Frequency: Range{100e3, 6.2e9}, Power: Range{-20, 15}},
	"APSIN12G":  {Frequency: Range{100e3, 12e9}, Power: Range{-20, 15}},
	"APSIN20G":  {Frequency: Range{100e3, 20e9}, Power: Range{-20, 15}},
	"APSIN26G":  {Frequency: Range{100e3, 26e9}, Power: Range{-20, 15}},
}

// Parse decodes a variant table from YAML. The document maps model names to
// frequency/power ranges:
//
//	APSIN12G-9K:
//	  frequency: {min: 9e3, max: 12e9}
//	  power: {min: -20, max: 15}
func Parse(data []byte) (map[string]Variant, error) {
	table := make(map[string]Variant)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("error parsing limits table: %w", err)
	}
	for model, v := range table {
		if v.Frequency.Min > v.Frequency.Max || v.Power.Min > v.Power.Max {
			return nil, fmt.Errorf("model %s: min exceeds max", model)
		}
	}
	return table, nil
}

// Load reads a variant table from a YAML file and merges it over Builtin.
// File entries win on model-name collisions.
func Load(path string) (map[string]Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loaded, err := Parse(data)
	if err != nil {
		return nil, err
	}
	table := make(map[string]Variant, len(Builtin)+len(loaded))
	for model, v := range Builtin {
		table[model] = v
	}
	for model, v := range loaded {
		table[model] = v
	}
	return table, nil
}

// Lookup returns the limits for the given model from the table, falling back
// to Builtin when table is nil.
func Lookup(table map[string]Variant, model string) (Variant, error) {
	if table == nil {
		table = Builtin
	}
	v, ok := table[model]
	if !ok {
		return Variant{}, fmt.Errorf("unknown model %q", model)
	}
	return v, nil
}

// Apply pushes the variant's limits onto the driver.
func Apply(sg *apsin.SignalGenerator, v Variant) error {
	if err := sg.SetLimits(apsin.FrequencyControl, v.Frequency.Min, v.Frequency.Max); err != nil {
		return err
	}
	return sg.SetLimits(apsin.PowerControl, v.Power.Min, v.Power.Max)
}

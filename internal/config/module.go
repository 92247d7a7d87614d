package config

import (
	"go.uber.org/fx"

	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
)

// Overrides carries command line values that take precedence over the YAML.
type Overrides struct {
	Regions []string
	Rates   *Rates
	Force   bool
}

// Apply copies the set fields of o onto c.
func (o Overrides) Apply(c *PrepConfig) {
	if len(o.Regions) > 0 {
		c.Regions = append([]string(nil), o.Regions...)
	}
	if o.Rates != nil {
		c.Rates = *o.Rates
	}
	if o.Force {
		c.Force = true
	}
}

// NewPrepConfig loads, overrides and validates the preparation settings.
func NewPrepConfig(cfg *coreConfig.Config, overrides Overrides) (*PrepConfig, error) {
	pc, err := Load(cfg)
	if err != nil {
		return nil, err
	}
	overrides.Apply(pc)
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

// Module provides *PrepConfig. Overrides must be supplied by the caller.
var Module = fx.Options(
	fx.Provide(NewPrepConfig),
)

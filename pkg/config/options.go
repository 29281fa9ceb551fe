package config

import (
	"mercator-hq/callisto/pkg/contract"
)

// Options translates the enforcement section into contract options, so a
// configuration file can set the strictness defaults for every contract an
// application builds:
//
//	enf, err := contract.New(fn, append(cfg.Enforcement.Options(), extra...)...)
//
// Per-contract options appended after the configured ones take precedence.
func (c EnforcementConfig) Options() []contract.Option {
	var opts []contract.Option
	if c.RequireArgs {
		opts = append(opts, contract.RequireArgs())
	}
	if c.RequireReturn {
		opts = append(opts, contract.RequireReturn())
	}
	if c.IgnoreSelf {
		opts = append(opts, contract.IgnoreSelf())
	}
	if len(c.ReturnExempt) > 0 {
		opts = append(opts, contract.ReturnExempt(c.ReturnExempt...))
	}
	return opts
}

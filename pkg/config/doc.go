// Package config provides YAML-based configuration for applications that
// embed Callisto's contract enforcement.
//
// Configuration is loaded from a file, filled in with defaults, optionally
// overridden by CALLISTO_* environment variables, and validated:
//
//	cfg, err := config.LoadWithEnvOverrides("callisto.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	enf, err := contract.New(fn, cfg.Enforcement.Options()...)
//
// The enforcement section maps directly onto contract options, so the
// strictness of every contract an application builds can be set in one
// place. The violations, metrics, and logging sections configure the
// corresponding optional subsystems.
//
// A Watcher reloads the file on change with debouncing, for long-running
// processes that want configuration changes without a restart.
package config

// Package config loads and validates route table files.
//
// A route table is a YAML document of kind RouteTable. Its spec lists
// the routes in matching order together with the screen sets, the
// screen matching mode and the settings of the resolution service.
//
// Values may reference environment variables as ${VAR} or
// ${VAR:-default}; "$$" produces a literal dollar sign.
//
//	cfg, err := config.LoadConfig("routes.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// A Watcher reloads the file when it changes and hands every valid
// revision to a callback.
package config

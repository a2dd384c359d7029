// Package config loads the keychord TOML configuration.
//
// A configuration file looks like:
//
//	log_level    = "info"
//	actions_dir  = "actions"
//	watch        = true
//	quit_key     = "<C-c>"
//	call_timeout = "250ms"
//
//	[[chord]]
//	name        = "mouse-layer"
//	inputs      = ["Mouse1"]
//	actions_dir = "actions/layer"
//
//	[[chord]]
//	name        = "mouse-layer-2"
//	inputs      = ["Mouse2"]
//	actions_dir = "actions/layer2"
//	parent      = "mouse-layer"
//
// A chord with a parent is bound inside the parent's context, so it needs
// the parent held first. Parents must be declared before their children.
// Relative directories are resolved against the directory containing the
// configuration file. KEYCHORD_LOG_LEVEL, KEYCHORD_ACTIONS_DIR, KEYCHORD_WATCH,
// KEYCHORD_QUIT_KEY and KEYCHORD_CALL_TIMEOUT override the top-level keys.
package config

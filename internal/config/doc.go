// Package config provides configuration management for podctl.
//
// Configuration is loaded and merged in the following order, later layers
// overriding non-zero fields of earlier ones:
//
//  1. Default configuration (GetDefaultConfig)
//  2. User configuration (~/.config/podctl/config.yaml)
//  3. Project configuration (./.podctl/config.yaml)
//
// A single file can be loaded on top of the defaults with LoadConfigFromPath,
// which is what the --config flag does.
//
// Example:
//
//	hub:
//	  url: "http://localhost:5260/hubs/pod"
//	  skipNegotiation: false
//	  pingInterval: 15s
//	api:
//	  baseURL: "http://localhost:5260"
//	  retryMax: 2
//	terminal:
//	  url: "http://localhost:5260/terminal"
//	logs:
//	  maxLines: 5000
//	logging:
//	  level: debug
//	  file: /tmp/podctl.log
package config

// Package config loads runtime configuration for the shell and the terminal
// UI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c/-config or $POSKEEPER_CONFIG.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
//	{
//	  "data_dir": "/var/lib/poskeeper",
//	  "ipc_addr": "127.0.0.1:50061",
//	  "server_url": "https://pos.example.com",
//	  "username": "cashier1",
//	  "check_url": "https://www.google.com/generate_204",
//	  "check_timeout": "5s",
//	  "online_check_interval": "30s",
//	  "export_dir": "/home/cashier/exports",
//	  "log_level": "info"
//	}
package config

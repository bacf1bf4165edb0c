package config

import (
	"github.com/dmitrijs2005/poskeeper/internal/flagx"
	"github.com/dmitrijs2005/poskeeper/internal/timex"
)

// JsonConfig mirrors Config for file decoding. Durations accept "3s" or
// integer nanoseconds.
type JsonConfig struct {
	DataDir             string         `json:"data_dir"`
	IPCAddr             string         `json:"ipc_addr"`
	ServerURL           string         `json:"server_url"`
	Username            string         `json:"username"`
	CheckURL            string         `json:"check_url"`
	CheckTimeout        timex.Duration `json:"check_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	ExportDir           string         `json:"export_dir"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the config file selected by -c/-config or
// $POSKEEPER_CONFIG. Keys missing from the file keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	jc := JsonConfig{
		DataDir:             cfg.DataDir,
		IPCAddr:             cfg.IPCAddr,
		ServerURL:           cfg.ServerURL,
		Username:            cfg.Username,
		CheckURL:            cfg.CheckURL,
		CheckTimeout:        timex.Duration{Duration: cfg.CheckTimeout},
		OnlineCheckInterval: timex.Duration{Duration: cfg.OnlineCheckInterval},
		ExportDir:           cfg.ExportDir,
		LogLevel:            cfg.LogLevel,
	}
	if err := flagx.DecodeConfigFile(path, &jc); err != nil {
		return err
	}

	cfg.DataDir = jc.DataDir
	cfg.IPCAddr = jc.IPCAddr
	cfg.ServerURL = jc.ServerURL
	cfg.Username = jc.Username
	cfg.CheckURL = jc.CheckURL
	cfg.CheckTimeout = jc.CheckTimeout.Duration
	cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	cfg.ExportDir = jc.ExportDir
	cfg.LogLevel = jc.LogLevel
	return nil
}

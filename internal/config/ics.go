package config

import "fmt"

// ICSConfig controls the PRODID stamped into every emitted VCALENDAR. caldir
// requires a fixed, deterministic PRODID across runs.
type ICSConfig struct {
	CompanyName string
	ProductName string
	Version     string
	Language    string
}

// DefaultICSConfig is used when no [ics] section overrides it.
func DefaultICSConfig() ICSConfig {
	return ICSConfig{
		CompanyName: "caldir",
		ProductName: "caldir-sync",
		Language:    "EN",
	}
}

func (cfg ICSConfig) BuildProdID() string {
	if cfg.Version != "" {
		return fmt.Sprintf("-//%s//%s %s//%s",
			cfg.CompanyName, cfg.ProductName, cfg.Version, cfg.Language)
	}
	return fmt.Sprintf("-//%s//%s//%s",
		cfg.CompanyName, cfg.ProductName, cfg.Language)
}

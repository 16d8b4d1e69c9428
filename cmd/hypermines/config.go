package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Shape   string  `json:"shape"`
	Mines   int     `json:"mines"`
	Seed    *uint64 `json:"seed,omitempty"`
	Save    string  `json:"save"`
	Name    string  `json:"name"`
	LogFile string  `json:"log_file"`
	Debug   bool    `json:"debug"`
	List    bool    `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Shape: "9x9",
		Mines: 10,
		Name:  "default",
	}
}

func (c Config) Fields() logrus.Fields {
	fields := logrus.Fields{
		"shape":    c.Shape,
		"mines":    c.Mines,
		"save":     c.Save,
		"name":     c.Name,
		"log_file": c.LogFile,
	}
	if c.Seed != nil {
		fields["seed"] = *c.Seed
	}
	return fields
}

func ReadConfig(path string, config *Config) error {
	if b, err := os.ReadFile(path); err != nil {
		return err
	} else {
		return json.Unmarshal(b, config)
	}
}

// parseConfig layers defaults, the optional -config file and explicitly set
// flags, in that order.
func parseConfig(args []string) (Config, error) {
	var (
		flags      = DefaultConfig()
		seed       uint64
		configPath string
	)

	fs := flag.NewFlagSet("hypermines", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "JSON config file path")
	fs.StringVar(&flags.Shape, "shape", flags.Shape, "board shape, e.g. 4x4x4")
	fs.IntVar(&flags.Mines, "mines", flags.Mines, "number of mines")
	fs.Uint64Var(&seed, "seed", 0, "seed for mine placement")
	fs.StringVar(&flags.Save, "save", flags.Save, "sqlite file to save games to")
	fs.StringVar(&flags.Name, "name", flags.Name, "name of the saved game")
	fs.StringVar(&flags.LogFile, "log-file", flags.LogFile, "mirror logs to a rotated file")
	fs.BoolVar(&flags.Debug, "debug", flags.Debug, "debug logging")
	fs.BoolVar(&flags.List, "list", false, "list saved games and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	config := DefaultConfig()
	if configPath != "" {
		if err := ReadConfig(configPath, &config); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shape":
			config.Shape = flags.Shape
		case "mines":
			config.Mines = flags.Mines
		case "seed":
			config.Seed = &seed
		case "save":
			config.Save = flags.Save
		case "name":
			config.Name = flags.Name
		case "log-file":
			config.LogFile = flags.LogFile
		case "debug":
			config.Debug = flags.Debug
		case "list":
			config.List = flags.List
		}
	})
	return config, nil
}

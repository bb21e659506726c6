// Package config parses the noobcash daemon's CLI flags and, like the
// teacher's node.LoadConfig, optionally layers a YAML file underneath
// them — CLI flags always win.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything cmd/noobcashd needs to start a node, per
// spec.md §6.2.
type Config struct {
	IPv6        bool   `yaml:"ipv6"`
	Port        int    `yaml:"port"`
	Bootstrap   string `yaml:"bootstrap"`
	Capacity    int    `yaml:"capacity"`
	Difficulty  int    `yaml:"difficulty"`
	Nodes       int    `yaml:"nodes"`
	Transactions string `yaml:"transactions"`
	Debug       bool   `yaml:"debug"`
	Verbose     bool   `yaml:"verbose"`
}

// IsBootstrap reports whether this process should start as the
// bootstrap node: the absence of --bootstrap means bootstrap, per
// spec.md §6.2.
func (c Config) IsBootstrap() bool {
	return c.Bootstrap == ""
}

// IP returns the interface address to bind to, given the --ipv6 flag.
func (c Config) IP() string {
	if c.IPv6 {
		return "::"
	}
	return "0.0.0.0"
}

// defaults mirrors the teacher's DefaultConfig: sensible values used
// both as flag defaults and as the base a YAML file is unmarshaled
// onto.
func defaults() Config {
	return Config{
		Port:       5000,
		Capacity:   10,
		Difficulty: 4,
		Nodes:      1,
	}
}

// Load builds a Config from an optional YAML file (configPath, empty to
// skip) layered under the process's command-line flags. Flags always
// take precedence over file values, matching the teacher's CLI-override
// layering in cmd/klingond/main.go.
func Load(args []string, configPath string) (Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, err)
		}
	}

	fs := flag.NewFlagSet("noobcashd", flag.ContinueOnError)

	ipv6 := fs.Bool("ipv6", cfg.IPv6, "bind on an IPv6 interface")
	fs.BoolVar(ipv6, "6", cfg.IPv6, "shorthand for --ipv6")

	port := fs.Int("port", cfg.Port, "port to listen on")
	fs.IntVar(port, "p", cfg.Port, "shorthand for --port")

	bootstrap := fs.String("bootstrap", cfg.Bootstrap, "bootstrap node URL (absent: this process is the bootstrap)")
	fs.StringVar(bootstrap, "b", cfg.Bootstrap, "shorthand for --bootstrap")

	capacity := fs.Int("capacity", cfg.Capacity, "mempool capacity that triggers block sealing")
	fs.IntVar(capacity, "c", cfg.Capacity, "shorthand for --capacity")

	difficulty := fs.Int("difficulty", cfg.Difficulty, "proof-of-work difficulty (leading zero hex chars)")
	fs.IntVar(difficulty, "d", cfg.Difficulty, "shorthand for --difficulty")

	nodes := fs.Int("nodes", cfg.Nodes, "total number of nodes in the network")
	fs.IntVar(nodes, "n", cfg.Nodes, "shorthand for --nodes")

	transactions := fs.String("transactions", cfg.Transactions, "path to a transaction script to drive")
	fs.StringVar(transactions, "t", cfg.Transactions, "shorthand for --transactions")

	debug := fs.Bool("debug", cfg.Debug, "include mempool in GET /transactions/ responses")
	verbose := fs.Bool("verbose", cfg.Verbose, "enable debug-level logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.IPv6 = *ipv6
	cfg.Port = *port
	cfg.Bootstrap = *bootstrap
	cfg.Capacity = *capacity
	cfg.Difficulty = *difficulty
	cfg.Nodes = *nodes
	cfg.Transactions = *transactions
	cfg.Debug = *debug
	cfg.Verbose = *verbose

	return cfg, nil
}

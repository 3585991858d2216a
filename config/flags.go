package config

import (
	"flag"
	"os"
)

type CliConfig struct {
	ConfigFile string
	Debug      bool
	Version    bool
}

// ParseArgs parses the process command line.
func ParseArgs() *CliConfig {
	args, err := parseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		// flag.CommandLine exits on error, this is unreachable.
		panic(err)
	}
	return args
}

func parseArgs(fs *flag.FlagSet, argv []string) (*CliConfig, error) {
	args := &CliConfig{}
	fs.StringVar(&args.ConfigFile, "config", "", "Path to the config file")
	fs.BoolVar(&args.Debug, "d", false, "Enable debug mode")
	fs.BoolVar(&args.Debug, "debug", false, "Enable debug mode")
	fs.BoolVar(&args.Version, "v", false, "Print version and exit")
	fs.BoolVar(&args.Version, "version", false, "Print version and exit")
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	return args, nil
}

package config

import (
	"github.com/spf13/pflag"
)

var CliArgs *CliConfig

type CliConfig struct {
	ConfigFile string
	EnvFile    string
	Debug      bool
	Help       bool

	flags *pflag.FlagSet
}

// ParseArgs parses the command line into CliArgs.
func ParseArgs(args []string) error {
	if CliArgs != nil {
		panic("already defined")
	}
	cli, err := parseArgs(args)
	if err != nil {
		return err
	}
	CliArgs = cli
	return nil
}

func parseArgs(args []string) (*CliConfig, error) {
	cli := &CliConfig{}
	fs := pflag.NewFlagSet("mycolor", pflag.ContinueOnError)
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to the config file")
	fs.StringVar(&cli.EnvFile, "env-file", ".env", "Path to a dotenv file loaded into the environment if it exists")
	fs.BoolVarP(&cli.Debug, "debug", "d", false, "Enable debug mode")
	fs.BoolVarP(&cli.Help, "help", "h", false, "Print usage and exit")
	fs.String("listen", defaultListenAddress, "Address to listen on")
	fs.String("route", defaultRoute, "Path the color analysis endpoint is mounted on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cli.flags = fs
	return cli, nil
}

// Usage prints the flag defaults.
func (c *CliConfig) Usage() string {
	return c.flags.FlagUsages()
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/philipp01105/applog/config"
)

type rootOptions struct {
	profile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "applog",
		Short:         "Environment-configured logging with mail alerts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", string(config.Production),
		"configuration profile (production or development)")

	cmd.AddCommand(newConfigCmd(opts), newEmitCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	p, err := config.ParseProfile(o.profile)
	if err != nil {
		return nil, err
	}
	return config.FromProcess(p)
}

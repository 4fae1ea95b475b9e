package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/Karasowl/biblioperson/profile"
)

func loadProfiles(dir string) (*profile.Manager, error) {
	m, err := profile.NewManager()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := m.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func newProfilesCmd(c *cli) *cobra.Command {
	var dir string
	resolve := func(cmd *cobra.Command) (*profile.Manager, error) {
		return loadProfiles(pick(cmd, "profiles-dir", dir, c.settings.ProfilesDir))
	}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the available processing profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := resolve(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tSEGMENTER\tSOURCE")
			for _, name := range m.Names() {
				p, _ := m.Get(name)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.ContentType, p.Segmenter, m.Source(name))
			}
			return tw.Flush()
		},
	}
	cmd.PersistentFlags().StringVar(&dir, "profiles-dir", "", "directory of additional YAML profiles")

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a profile as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolve(cmd)
			if err != nil {
				return err
			}
			p, err := m.Get(args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.AddCommand(show)
	return cmd
}

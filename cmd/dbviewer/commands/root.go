package commands

import (
	"github.com/spf13/cobra"

	"dbviewer/internal/config"
)

type flags struct {
	configPath  string
	contentFile string
	delay       string
	surface     string
	controlAddr string
	noConsole   bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "dbviewer",
		Short:        "Cycle a fullscreen kiosk through dashboards, files and HTML",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKiosk(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&f.contentFile, "content-file", "f", "", "content list, one item per line (default C:\\DBurl.txt or /home/pi/DBurl.txt)")
	pf.StringVarP(&f.delay, "delay", "d", "", "time each item stays on screen, e.g. 15s")
	pf.StringVar(&f.surface, "surface", "", "display surface: chrome or log")
	pf.StringVar(&f.controlAddr, "control-addr", "", "control server address, or \"off\"")
	pf.BoolVar(&f.noConsole, "no-console", false, "run without the terminal console, e.g. from a desktop autostart")

	root.AddCommand(runCmd(f), checkCmd(f))
	return root
}

// loadConfig reads the config file and environment, then applies flags the
// user actually set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("content-file") {
		cfg.ContentFile = f.contentFile
	}
	if changed("delay") {
		d, err := config.ParseDuration(f.delay)
		if err != nil {
			return nil, err
		}
		cfg.Delay = d
	}
	if changed("surface") {
		cfg.Surface = f.surface
	}
	if changed("control-addr") {
		cfg.ControlAddr = f.controlAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package main implements run-consul, the boot time configurator that prepares
// a consul agent on a google compute instance and hands it to systemd.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/bootstrap"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/logx"
)

type global struct {
	Verbosity int `help:"increase verbosity of logging" short:"v" type:"counter" default:"0"`
}

func (t global) BeforeApply() error {
	if t.Verbosity > 0 {
		os.Setenv(consulboot.EnvLogsVerbose, "true")
	}

	return nil
}

func main() {
	var shellCli struct {
		global
		Run                cmdRun                       `cmd:"" default:"1" help:"configure the consul agent for this instance and start it under systemd"`
		Peers              cmdPeers                     `cmd:"" help:"list the internal addresses of sibling instances in the managed instance group"`
		Version            cmdVersion                   `cmd:"" help:"display versioning information"`
		InstallCompletions kongplete.InstallCompletions `cmd:"" help:"install shell completions"`
	}

	var (
		err error
		ctx *kong.Context
	)

	log.SetFlags(log.Flags() | log.Lshortfile)

	parser := kong.Must(
		&shellCli,
		kong.Name("run-consul"),
		kong.Description("configures and supervises the consul agent on a google compute instance"),
		kong.Vars{
			"env_cluster_tag_name":     consulboot.EnvClusterTagName,
			"env_cluster_size_key":     consulboot.EnvClusterSizeKey,
			"env_run_as_user":          consulboot.EnvRunAsUser,
			"default_cluster_size_key": consulboot.DefaultClusterSizeKey,
			"default_unit_path":        consulboot.DefaultUnitPath,
		},
		kong.UsageOnError(),
		kong.Bind(&shellCli.global),
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("directory", complete.PredictDirs("*")),
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	if ctx, err = parser.Parse(os.Args[1:]); err != nil {
		logx.MaybeLog(err)
		if ctx != nil {
			_ = ctx.PrintUsage(false)
		}
		os.Exit(1)
	}

	if err = ctx.Run(); err != nil {
		if shellCli.Verbosity > 0 {
			logx.Verbose(err)
		} else {
			logx.MaybeLog(err)
		}

		if errors.Is(err, bootstrap.ErrInvalidRole) {
			_ = ctx.PrintUsage(false)
		}
		os.Exit(1)
	}
}

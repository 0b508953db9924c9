package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/bootstrap"
	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/systemx"
	"github.com/markyjackson-taulia/terraform-google-consul/systemd"
)

type cmdRun struct {
	Server           bool   `help:"configure the agent as a consensus server" xor:"role"`
	Client           bool   `help:"configure the agent as a plain client" xor:"role"`
	ClusterTagName   string `help:"tag shared by the instances that should join the same cluster; discovery is disabled when empty" env:"${env_cluster_tag_name}"`
	ClusterSizeKey   string `help:"custom metadata key holding the intended server cluster size" default:"${default_cluster_size_key}" env:"${env_cluster_size_key}"`
	RaftProtocol     int    `help:"consensus protocol version" default:"3"`
	ConfigDir        string `help:"agent configuration directory, defaults to the config sibling of the executable" predictor:"directory"`
	DataDir          string `help:"agent data directory, defaults to the data sibling of the executable" predictor:"directory"`
	LogDir           string `help:"agent log directory, defaults to the log sibling of the executable" predictor:"directory"`
	BinDir           string `help:"directory holding the consul binary, defaults to the directory of the executable" predictor:"directory"`
	User             string `help:"user the agent runs as, defaults to the owner of the config directory" env:"${env_run_as_user}"`
	UnitPath         string `help:"location of the rendered systemd unit" default:"${default_unit_path}"`
	ExtraConfig      string `help:"yaml file with additional agent settings merged into the rendered configuration" predictor:"file"`
	SkipConsulConfig bool   `help:"skip generating the agent configuration, leaving any existing configuration in place"`
}

func (t cmdRun) Run(ctx *global) (err error) {
	var (
		b bootstrap.Context
	)

	if b, err = t.prepare(); err != nil {
		return err
	}

	return bootstrap.Run(context.Background(), b)
}

// prepare applies the path and user defaults and freezes the run configuration.
func (t cmdRun) prepare() (b bootstrap.Context, err error) {
	var (
		executable string
	)

	if t.Server == t.Client {
		return b, bootstrap.ErrInvalidRole
	}

	if t.BinDir == "" {
		if executable, err = os.Executable(); err != nil {
			return b, errors.WithStack(err)
		}

		t.BinDir = filepath.Dir(executable)
	}

	if t.ConfigDir == "" {
		t.ConfigDir = consulboot.DefaultLocation(t.BinDir, "config")
	}

	if t.DataDir == "" {
		t.DataDir = consulboot.DefaultLocation(t.BinDir, "data")
	}

	if t.LogDir == "" {
		t.LogDir = consulboot.DefaultLocation(t.BinDir, "log")
	}

	if t.User == "" {
		owner, err := systemx.PathOwner(t.ConfigDir)
		if err != nil {
			return b, err
		}

		t.User = owner.Username
	}

	return bootstrap.Context{
		Server:           t.Server,
		Client:           t.Client,
		ClusterTagName:   t.ClusterTagName,
		ClusterSizeKey:   t.ClusterSizeKey,
		RaftProtocol:     t.RaftProtocol,
		ConfigDir:        t.ConfigDir,
		DataDir:          t.DataDir,
		LogDir:           t.LogDir,
		BinDir:           t.BinDir,
		UnitPath:         t.UnitPath,
		User:             t.User,
		SkipConsulConfig: t.SkipConsulConfig,
		ExtraConfigPath:  t.ExtraConfig,
		Metadata:         gcloud.NewGCE(),
		Supervisor:       systemd.NewDbus(),
	}, nil
}

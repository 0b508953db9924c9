// Package systemd renders the supervision unit for the consul agent and
// reconciles it with the running system.
package systemd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/pkg/errors"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/fsx"
)

// NewAgentUnit describes the supervised consul agent process for the given
// directory layout and run-as user.
func NewAgentUnit(bindir, configdir, datadir, logdir, user string) Unit {
	return Unit{
		Description: "consul agent",
		User:        user,
		ExecStart:   filepath.Join(bindir, consulboot.AgentBinaryName) + " agent -config-dir " + configdir + " -data-dir " + datadir,
		StdoutPath:  filepath.Join(logdir, "consul-stdout.log"),
		StderrPath:  filepath.Join(logdir, "consul-error.log"),
	}
}

// Unit declarative description of the managed process: single instance,
// restarted on unexpected exit, stopped with SIGINT so the agent can leave
// the cluster gracefully.
type Unit struct {
	Description string
	User        string
	ExecStart   string
	StdoutPath  string
	StderrPath  string
}

// Options the unit file sections.
func (t Unit) Options() []*unit.UnitOption {
	return []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", t.Description),
		unit.NewUnitOption("Unit", "After", "network-online.target"),
		unit.NewUnitOption("Service", "User", t.User),
		unit.NewUnitOption("Service", "ExecStart", t.ExecStart),
		unit.NewUnitOption("Service", "Restart", "on-failure"),
		unit.NewUnitOption("Service", "KillSignal", "SIGINT"),
		unit.NewUnitOption("Service", "StandardOutput", "append:"+t.StdoutPath),
		unit.NewUnitOption("Service", "StandardError", "append:"+t.StderrPath),
		unit.NewUnitOption("Install", "WantedBy", "multi-user.target"),
	}
}

// Serialize the unit file content.
func (t Unit) Serialize() (raw []byte, err error) {
	if raw, err = io.ReadAll(unit.Serialize(t.Options())); err != nil {
		return nil, errors.WithStack(err)
	}

	return raw, nil
}

// WriteUnit overwrites the unit file at path, reporting whether its content
// changed. the digest of the previous content decides restart versus plain
// start during reconciliation.
func WriteUnit(t Unit, path string) (changed bool, err error) {
	var (
		raw []byte
	)

	if raw, err = t.Serialize(); err != nil {
		return false, err
	}

	previous := ""
	if fsx.IsRegularFile(path) {
		previous = fsx.MD5(path)
	}

	if err = os.WriteFile(path, raw, 0644); err != nil {
		return false, errors.Wrapf(err, "unable to write supervision unit: %s", path)
	}

	return previous != fsx.MD5(path), nil
}

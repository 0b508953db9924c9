// Package bootstrap runs the one shot pipeline that configures the consul
// agent on the current instance and hands it to systemd.
package bootstrap

import (
	"context"
	"log"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/agent"
	"github.com/markyjackson-taulia/terraform-google-consul/clustering"
	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/envx"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/errorsx"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/fsx"
	"github.com/markyjackson-taulia/terraform-google-consul/systemd"
)

// ErrInvalidRole contradictory or missing role selection; reported before any
// network or filesystem side effect.
const ErrInvalidRole = errorsx.String("exactly one of --server or --client must be provided")

// Context immutable configuration for a single run, populated entirely by the
// flag parsing stage.
type Context struct {
	Server           bool
	Client           bool
	ClusterTagName   string
	ClusterSizeKey   string
	RaftProtocol     int
	ConfigDir        string
	DataDir          string
	LogDir           string
	BinDir           string
	UnitPath         string
	User             string
	SkipConsulConfig bool
	ExtraConfigPath  string

	Metadata   gcloud.Metadata
	Supervisor systemd.Supervisor
}

// Validate enforces the role invariant and that the flag stage filled every
// required field. runs before any side effect.
func Validate(b Context) error {
	if b.Server == b.Client {
		return ErrInvalidRole
	}

	if b.ConfigDir == "" || b.DataDir == "" || b.LogDir == "" || b.BinDir == "" {
		return errors.New("config, data, log and bin directories are required")
	}

	if b.User == "" {
		return errors.New("a run-as user is required")
	}

	if b.UnitPath == "" {
		return errors.New("a unit path is required")
	}

	return nil
}

// checkPrerequisites verifies the external pieces the run depends on before
// touching anything: the agent binary and the configuration directory.
func checkPrerequisites(b Context) error {
	if bin := filepath.Join(b.BinDir, consulboot.AgentBinaryName); !fsx.IsExecutable(bin) {
		return errors.Errorf("prerequisite missing: no executable agent binary at %s", bin)
	}

	if !fsx.DirExists(b.ConfigDir) {
		return errors.Errorf("prerequisite missing: configuration directory does not exist: %s", b.ConfigDir)
	}

	return nil
}

// Run executes the pipeline: validate, check prerequisites, resolve identity
// and directives from metadata, render the agent configuration and the
// supervision unit, then reconcile with the supervisor. fail fast, single
// shot, no rollback of files already written.
func Run(ctx context.Context, b Context) (err error) {
	var (
		changed bool
	)

	if err = Validate(b); err != nil {
		return err
	}

	if err = checkPrerequisites(b); err != nil {
		return err
	}

	if b.SkipConsulConfig {
		log.Println("agent configuration generation skipped, leaving the existing configuration in place")
	} else if err = render(ctx, b); err != nil {
		return err
	}

	u := systemd.NewAgentUnit(b.BinDir, b.ConfigDir, b.DataDir, b.LogDir, b.User)
	if changed, err = systemd.WriteUnit(u, b.UnitPath); err != nil {
		return err
	}

	return b.Supervisor.Apply(ctx, b.UnitPath, changed)
}

func render(ctx context.Context, b Context) (err error) {
	var (
		id     gcloud.Identity
		quorum clustering.QuorumDirective
	)

	if id, err = gcloud.ResolveIdentity(ctx, b.Metadata, 0); err != nil {
		return err
	}

	log.Println("resolved instance identity", id.Name, id.IP, id.Zone, id.Project)

	if quorum, err = clustering.ResolveQuorum(ctx, b.Metadata, b.Server, b.ClusterSizeKey); err != nil {
		return err
	}

	discovery := clustering.ResolveDiscovery(b.ClusterTagName, id.Project)

	extra := make(map[string]interface{})
	if b.ExtraConfigPath != "" {
		if err = consulboot.ExpandAndDecodeFile(b.ExtraConfigPath, &extra); err != nil {
			return err
		}
	}

	cfg := agent.NewConfig(
		agent.ConfigOptionIdentity(id),
		agent.ConfigOptionRole(b.Server),
		agent.ConfigOptionQuorum(quorum),
		agent.ConfigOptionDiscovery(discovery),
		agent.ConfigOptionRaftProtocol(b.RaftProtocol),
		agent.ConfigOptionExtra(extra),
	)

	if envx.Boolean(false, consulboot.EnvLogsVerbose) {
		log.Println("rendering agent configuration", spew.Sdump(cfg))
	}

	return agent.WriteConfig(cfg, b.ConfigDir, b.User)
}

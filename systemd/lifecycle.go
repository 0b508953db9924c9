package systemd

import (
	"context"
	"log"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/pkg/errors"
)

// Supervisor reconciles the rendered unit with the process supervisor.
// changed reports whether the unit file content differs from the previous run;
// an unchanged unit is started if inactive but never restarted, so repeated
// invocations cause no process churn.
type Supervisor interface {
	Apply(ctx context.Context, unitPath string, changed bool) error
}

// NewDbus supervisor backed by the system bus.
func NewDbus() Dbus {
	return Dbus{}
}

// Dbus production Supervisor implementation.
type Dbus struct{}

func (t Dbus) Apply(ctx context.Context, unitPath string, changed bool) (err error) {
	var (
		conn *dbus.Conn
	)

	if conn, err = dbus.NewSystemConnectionContext(ctx); err != nil {
		return errors.Wrap(err, "failed to connect to systemd bus")
	}
	defer conn.Close()

	if err = conn.ReloadContext(ctx); err != nil {
		return errors.Wrap(err, "failed to reload unit definitions")
	}

	if _, _, err = conn.EnableUnitFilesContext(ctx, []string{unitPath}, false, true); err != nil {
		return errors.Wrapf(err, "failed to enable unit: %s", unitPath)
	}

	name := filepath.Base(unitPath)

	if changed {
		log.Println("unit definition changed, restarting", name)
		return startJob(ctx, name, conn.RestartUnitContext)
	}

	return startJob(ctx, name, conn.StartUnitContext)
}

func startJob(ctx context.Context, target string, d func(context.Context, string, string, chan<- string) (int, error)) error {
	await := make(chan string)

	_, err := d(ctx, target, "replace", await)
	if err != nil {
		return errors.Wrapf(err, "failed to queue job for %s", target)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-await:
		return resultToError(result)
	}
}

func resultToError(result string) error {
	if result == "done" {
		return nil
	}
	return errors.New(result)
}

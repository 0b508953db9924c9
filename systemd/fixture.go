package systemd

import "context"

// Application a recorded Apply invocation.
type Application struct {
	UnitPath string
	Changed  bool
}

// Fixture Supervisor recording applications for tests.
type Fixture struct {
	Applied []Application
	Err     error
}

func (t *Fixture) Apply(ctx context.Context, unitPath string, changed bool) error {
	t.Applied = append(t.Applied, Application{UnitPath: unitPath, Changed: changed})
	return t.Err
}

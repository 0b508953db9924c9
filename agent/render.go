package agent

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/systemx"
)

// WriteConfig renders the document into <dir>/default.json owned by owner.
// any existing file is overwritten in place; a crash mid write can leave a
// partial file, the boot time trigger model accepts that.
func WriteConfig(cfg Config, dir string, owner string) (err error) {
	var (
		raw      []byte
		uid, gid int
	)

	if uid, gid, err = systemx.LookupIDs(owner); err != nil {
		return err
	}

	if raw, err = cfg.EncodeJSON(); err != nil {
		return err
	}

	path := filepath.Join(dir, consulboot.DefaultConfigFile)
	if err = os.WriteFile(path, raw, 0644); err != nil {
		return errors.Wrapf(err, "unable to write agent configuration: %s", path)
	}

	if err = os.Chown(path, uid, gid); err != nil {
		return errors.Wrapf(err, "unable to set ownership of %s to %s", path, owner)
	}

	return nil
}

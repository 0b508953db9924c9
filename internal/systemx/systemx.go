package systemx

import (
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
)

// PathOwner resolves the user owning the file or directory at the provided path.
func PathOwner(path string) (u *user.User, err error) {
	var (
		info os.FileInfo
	)

	if info, err = os.Stat(path); err != nil {
		return nil, errors.WithStack(err)
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, errors.Errorf("unable to determine owner of %s", path)
	}

	if u, err = user.LookupId(strconv.FormatUint(uint64(st.Uid), 10)); err != nil {
		return nil, errors.Wrapf(err, "unable to resolve owner of %s", path)
	}

	return u, nil
}

// LookupIDs resolves a username into its numeric uid/gid pair.
func LookupIDs(username string) (uid int, gid int, err error) {
	var (
		u *user.User
	)

	if u, err = user.Lookup(username); err != nil {
		return 0, 0, errors.Wrapf(err, "unknown user %s", username)
	}

	if uid, err = strconv.Atoi(u.Uid); err != nil {
		return 0, 0, errors.WithStack(err)
	}

	if gid, err = strconv.Atoi(u.Gid); err != nil {
		return 0, 0, errors.WithStack(err)
	}

	return uid, gid, nil
}

// CurrentUserOrDefault returns the current user or the provided default.
func CurrentUserOrDefault(d user.User) (result *user.User) {
	var (
		err error
	)

	if result, err = user.Current(); err != nil {
		tmp := d
		return &tmp
	}

	return result
}

//go:build unix

package file

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func linkCount(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Nlink)
	}
	return 1
}

// preserveOwner gives f the owner and group of old where they differ from
// ours.
func preserveOwner(f *os.File, old os.FileInfo) error {
	st, ok := old.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	fd := int(f.Fd())
	if int(st.Uid) != os.Getuid() {
		if err := unix.Fchown(fd, int(st.Uid), -1); err != nil {
			return err
		}
	}
	if int(st.Gid) != os.Getgid() {
		if err := unix.Fchown(fd, -1, int(st.Gid)); err != nil {
			return err
		}
	}
	return nil
}

func defaultPerm() os.FileMode {
	mask := unix.Umask(0)
	unix.Umask(mask)
	return os.FileMode(0666 &^ mask)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}

func isNoSpace(err error) bool {
	return errors.Is(err, unix.ENOSPC)
}

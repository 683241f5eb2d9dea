//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
)

// openFileNoFollow opens a file for writing with O_NOFOLLOW so a symlink in
// the final path component is rejected at the kernel. O_CLOEXEC prevents FD
// leaks across exec. Directory components are covered by ValidatePath, which
// requires files to sit directly in an allowed directory.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

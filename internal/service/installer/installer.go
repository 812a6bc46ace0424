package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/lmod-packager/internal/logger"
	"github.com/oshokin/lmod-packager/internal/service/integrity"
)

const (
	// InstallFilename is the name the host looks for in its package directory.
	InstallFilename = "mod.lmod"

	// FileMode is used for the installed package.
	FileMode os.FileMode = 0o644

	// DirMode is used when the host package directory has to be created.
	DirMode os.FileMode = 0o755
)

var errEmptyArchive = errors.New("archive is empty")

// Install copies archivePath into hostDir as InstallFilename and returns the installed path.
// checksum is the digest the archive must have; when nil it is taken from the
// file before installing. The archive is streamed, never held in memory.
func Install(ctx context.Context, archivePath, hostDir string, checksum []byte) (installed string, err error) {
	if checksum == nil {
		if checksum, err = integrity.FileChecksum(archivePath); err != nil {
			return "", fmt.Errorf("read archive: %w", err)
		}
	}

	archiveFile, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return "", fmt.Errorf("read archive: %w", err)
	}

	defer func() {
		_ = archiveFile.Close()
	}()

	info, err := archiveFile.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	if info.Size() == 0 {
		return "", fmt.Errorf("%s: %w", archivePath, errEmptyArchive)
	}

	if err = os.MkdirAll(hostDir, DirMode); err != nil {
		return "", fmt.Errorf("create host package directory: %w", err)
	}

	target := filepath.Join(hostDir, InstallFilename)

	// go-update renames the current target aside, so one must exist.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.Create(target)
		if createErr != nil {
			return "", fmt.Errorf("create %s: %w", target, createErr)
		}

		_ = placeholder.Close()

		defer func() {
			if err != nil {
				_ = os.Remove(target)
			}
		}()
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: FileMode,
		Checksum:   checksum,
		Hash:       integrity.DefaultChecksumFunction,
	}

	logger.DebugKV(ctx, "Replacing installed package", "path", target)

	if err = goupdate.Apply(archiveFile, options); err != nil {
		return "", fmt.Errorf("install %s: %w", target, err)
	}

	for _, leftover := range []string{target + ".old", filepath.Join(hostDir, "."+InstallFilename+".old")} {
		if _, statErr := os.Stat(leftover); statErr == nil {
			_ = os.Remove(leftover)
		}
	}

	return target, nil
}

// HostRunning reports whether a process with the given executable name is running.
func HostRunning(processName string) (bool, error) {
	if processName == "" {
		return false, nil
	}

	processes, err := ps.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	wanted := executableName(processName)
	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if strings.EqualFold(process.Executable(), wanted) {
			return true, nil
		}
	}

	return false, nil
}

// executableName appends ".exe" on Windows when missing.
func executableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}

	return name
}

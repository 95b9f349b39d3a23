package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	logPrefix = "mapsroute"
	logSuffix = ".zst"

	// maxLogSize is the size at which the active log is rotated.
	maxLogSize = 4 << 20
	// maxArchivedLogs is how many rotated logs are kept.
	maxArchivedLogs = 3
)

type Paths struct {
	HomeDir string
	DataDir string
	LogFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "mapsroute")
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			dataDir = filepath.Join(xdgData, "mapsroute")
		}

		defaultPaths = &Paths{
			HomeDir: homeDir,
			DataDir: dataDir,
			LogFile: filepath.Join(dataDir, logPrefix+logSuffix),
		}

		if err := os.MkdirAll(defaultPaths.DataDir, 0755); err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

// isLogFile matches mapsroute.zst and rotated mapsroute.<n>.zst files.
func isLogFile(name string) bool {
	return strings.HasPrefix(name, logPrefix) && strings.HasSuffix(name, logSuffix)
}

// CleanLogFiles removes the active log and every rotated log.
func CleanLogFiles() error {
	ensureDefaultPaths()

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !isLogFile(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(defaultPaths.DataDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// RotateLogFiles moves the active log aside once it grows past maxLogSize and
// prunes rotated logs beyond maxArchivedLogs, oldest first.
func RotateLogFiles() error {
	ensureDefaultPaths()

	active := filepath.Join(defaultPaths.DataDir, logPrefix+logSuffix)
	if info, err := os.Stat(active); err == nil && info.Size() >= maxLogSize {
		archived := filepath.Join(defaultPaths.DataDir, fmt.Sprintf("%s.%d%s", logPrefix, time.Now().UnixNano(), logSuffix))
		if err := os.Rename(active, archived); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return err
	}

	var archives []logFileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isLogFile(name) || name == logPrefix+logSuffix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		archives = append(archives, logFileInfo{
			path:    filepath.Join(defaultPaths.DataDir, name),
			modTime: info.ModTime(),
		})
	}

	if len(archives) <= maxArchivedLogs {
		return nil
	}

	// Newest first
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].modTime.After(archives[j].modTime)
	})

	for _, old := range archives[maxArchivedLogs:] {
		if err := os.Remove(old.path); err != nil {
			return err
		}
	}

	return nil
}

type logFileInfo struct {
	path    string
	modTime time.Time
}

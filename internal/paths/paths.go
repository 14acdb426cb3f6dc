package paths

import (
	"os"
	"path/filepath"
)

const (
	AppDirName      = "soundboard"
	ConfigFileName  = "soundboard-config.json"
	ConfigYAMLName  = "soundboard-config.yaml"
	HistoryFileName = "history.db"
	LogFileName     = "soundboard.log"
	SoundsDirName   = "sounds"
	DirPerm         = 0755
	FilePerm        = 0644
)

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DataDir returns the platform-specific data directory for the soundboard:
//   - Windows: %APPDATA%\soundboard
//   - Unix:    ~/.config/soundboard
//
// Falls back to os.TempDir()/soundboard if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}

// HistoryPath returns the play history database location inside DataDir.
func HistoryPath() string {
	return filepath.Join(DataDir(), HistoryFileName)
}

// LogPath returns the log file location inside DataDir.
func LogPath() string {
	return filepath.Join(DataDir(), LogFileName)
}

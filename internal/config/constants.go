package config

import "strings"

// Version is reported by -version.
const Version = "0.1.0"

const SourceFileExt = ".snirk"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".snirk", ".snk"}

// ConfigFileName is the file Discover looks for.
const ConfigFileName = "snirk.yaml"

// REPL defaults
const (
	DefaultPrompt             = "snirk> "
	DefaultContinuationPrompt = "  ...> "
	DefaultHistoryFile        = ".snirk_history"
	DefaultHistoryDB          = ".snirk_history.db"
	DefaultHistoryLimit       = 500
	DefaultLogLevel           = "warn"
	DefaultBackend            = "vm"
)

// REPL meta commands
const (
	CmdQuit  = ":quit"
	CmdVars  = ":vars"
	CmdDis   = ":dis"
	CmdReset = ":reset"
	CmdHelp  = ":help"
)

// IsSourceFile reports whether path has a recognized source extension.
func IsSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

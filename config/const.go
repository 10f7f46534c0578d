package config

// AppVersion is the version of the extension.
var AppVersion string // Set with -ldflags at build time

// AppName is the name of the extension.
const AppName = "KExt"

// AppID is the extension UUID. It names the per-installation cache directory.
const AppID = "example@kaedenn.net"

// RegistryFile is the name of the persisted preferences document.
const RegistryFile = "registry.json"

// LogFile is the name of the default log file.
const LogFile = "extension.log"

// DebugLogFile is the name of the debug log file.
const DebugLogFile = "extension-debug.log"

// ConsoleLogFile receives the std logger output in release builds.
var ConsoleLogFile = "kext.log"

// DirPerm is the permission used when creating the cache directory.
const DirPerm = 0775

// PtsPathFormat is the path of a pseudo-terminal, used for interactive debugging.
const PtsPathFormat = "/dev/pts/%d"

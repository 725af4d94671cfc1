package constants

const (
	Version        = `0.1.0`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.mds/`
	DatabaseFile   = `mds.db`
	LogFile        = `mds.log`
	EnvPrefix      = `MDS`

	// GlobalStack is the stack used when no stack name is given.
	GlobalStack = `GLOBAL`
)

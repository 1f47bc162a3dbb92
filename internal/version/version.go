package version

const APP = "tracelens"

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)

package logging

import (
	"os"
)

// DebugEnabled returns true if debug mode is enabled via TB_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TB_DEBUG") != ""
}

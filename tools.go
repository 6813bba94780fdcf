//go:build tools

package gridio

import (
	_ "github.com/dmarkham/enumer"
)

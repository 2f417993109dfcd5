package debug

import (
	"fmt"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
)

type debug struct {
	Decode bool
	Coerce bool
	Keys   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Decode = boolEnv("MOTIS_DEBUG_DECODE")
	d.Coerce = boolEnv("MOTIS_DEBUG_COERCE")
	d.Keys = boolEnv("MOTIS_DEBUG_KEYS")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Decode() bool {
	return d.Decode
}

func Coerce() bool {
	return d.Coerce
}

func Keys() bool {
	return d.Keys
}

// Logf writes one debug line to stderr.
func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Dump renders a value for debug output.
func Dump(v any) string {
	return spew.Sdump(v)
}

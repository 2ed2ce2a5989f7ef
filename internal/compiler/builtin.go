package compiler

import (
	_ "embed"

	"github.com/stratalab/strata/internal/dataset"
)

//go:embed heartfailure.cue
var heartFailureCUE []byte

// BuiltinSchema compiles the embedded heart failure schema. It is the
// default when no --schema file is given on the command line.
func BuiltinSchema() (*dataset.Schema, error) {
	return CompileBytes("heartfailure.cue", heartFailureCUE)
}

package utils

import (
	"fmt"
	"io"
	"os"
)

// Verbose controls whether Logf and timing statistics print anything.
var Verbose = true

// Output is the writer log lines and timing statistics go to.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a formatted line to Output when Verbose is set.
func Logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Fprintln(Output)
	}
}

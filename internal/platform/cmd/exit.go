package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	exitWriter io.Writer = os.Stderr
	exitFunc             = os.Exit
)

// Exitf prints "service: message" to stderr and exits with code 1.
func Exitf(service, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if service = strings.TrimSpace(service); service != "" {
		message = service + ": " + message
	}
	fmt.Fprintln(exitWriter, message)
	exitFunc(1)
}

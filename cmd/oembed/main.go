package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUnsupported = 2
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(os.Stderr, "[ERROR] %s\n", ee.msg)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
	os.Exit(exitFailure)
}

// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package driverrors defines the closed error taxonomy the driver reports
// back to the caller, mirroring the SimulatorError enum of the original
// implementation.
package driverrors

import (
	"fmt"
	"strings"
)

// Category is the closed set of error kinds a match can fail with.
type Category string

const (
	CompilationError  Category = "CompilationError"
	RuntimeError      Category = "RuntimeError"
	TimeOutError      Category = "TimeOutError"
	FifoCreationError Category = "FifoCreationError"
	EpollError        Category = "EpollError"
	UnidentifiedError Category = "UnidentifiedError"
)

// label is the human-readable header create_error_response emits per category.
var label = map[Category]string{
	CompilationError:  "Compilation Error!",
	RuntimeError:      "Runtime Error!",
	TimeOutError:      "Timeout Error!",
	FifoCreationError: "Process Communication Error!",
	EpollError:        "Event Creation Error!",
	UnidentifiedError: "Unidentified Error. Contact the POCs!",
}

// DriverError is a categorized failure surfaced in a match's error response.
type DriverError struct {
	Category Category
	Message  string
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// New builds a DriverError of the given category.
func New(cat Category, format string, args ...interface{}) *DriverError {
	return &DriverError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Wrap categorizes an existing error, preserving its message.
func Wrap(cat Category, err error) *DriverError {
	return &DriverError{Category: cat, Message: err.Error()}
}

// FromExitCode maps a player/simulator process exit code to its category.
// Exit code 137 (SIGKILL, as delivered by an OOM or a cgroup timeout) maps to
// TimeOutError; everything else is a RuntimeError.
func FromExitCode(code int, detail string) *DriverError {
	if code == 137 {
		return New(TimeOutError, "%s", detail)
	}
	return New(RuntimeError, "%s", detail)
}

// Label returns the human-readable "ERROR TYPE" header for the category.
func (e *DriverError) Label() string {
	return label[e.Category]
}

// LogBlock renders the error as the "ERRORS, " prefixed block the result
// assembler embeds in a match's log, matching create_error_response exactly.
func (e *DriverError) LogBlock() string {
	var b strings.Builder
	b.WriteString("ERRORS, ERROR TYPE: ")
	b.WriteString(e.Label())
	b.WriteString("\nERRORS, ERROR LOG:\n")
	for _, line := range strings.Split(e.Message, "\n") {
		b.WriteString("ERRORS, ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

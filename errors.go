package course_archiver

import "errors"

var (
	// ErrPrecondition covers bad input: a missing directory, an unknown course, an unsupported downloader or video
	// type. Reported before any network or filesystem work and never retried.
	ErrPrecondition = errors.New("precondition failed")
	// ErrLayout means a page did not have the structure the parsing rules expect. Fatal for the whole run.
	ErrLayout = errors.New("unexpected page layout")
	// ErrTransfer is a failed network transfer or external tool invocation, after any retries.
	ErrTransfer = errors.New("transfer failed")
)

package kernel

import "errors"

var (
	// ErrPageMapped is returned when allocating a page that is already
	// mapped.
	ErrPageMapped = errors.New("kernel: page is already mapped")

	// ErrInvalidPage is returned when freeing a page that is not mapped.
	ErrInvalidPage = errors.New("kernel: page is not mapped")

	// ErrPageFault is returned by Translate when the page is not mapped or
	// the access is a write to a read-only mapping.
	ErrPageFault = errors.New("kernel: page fault")

	// ErrUnresolvableFault is returned when a fault is not a recoverable
	// copy-on-write write fault.
	ErrUnresolvableFault = errors.New("kernel: fault cannot be resolved")

	// ErrTooManyProcesses is returned when a fork would exceed the process
	// limit.
	ErrTooManyProcesses = errors.New("kernel: process limit reached")
)

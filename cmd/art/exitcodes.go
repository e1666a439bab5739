package main

// Exit codes returned by art commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, invalid paths)
	ExitDataError   = 3 // Data error (malformed input, unreadable store)
	ExitNotFound    = 4 // Requested identifier is not in the repository
	ExitCheckFailed = 5 // check found orphaned or duplicate edges
)

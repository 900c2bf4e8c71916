package gitcmd

// Internal helpers exposed to the package tests.
var (
	WriteSSHWrapper = writeSSHWrapper
	SplitCommitter  = splitCommitter
	ContainsLine    = containsLine
)

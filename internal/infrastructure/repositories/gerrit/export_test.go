package gerrit

// Internal helpers exposed to the package tests.
var (
	ParseReviewRows = parseReviewRows
	ShellQuote      = shellQuote
)

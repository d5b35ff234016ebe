package pipeline

// CycleResult aggregates one scan/deploy cycle across all tasks. A
// cancelled cycle carries everything accumulated up to the cancellation
// point, flagged separately from genuine failures.
type CycleResult struct {
	ScannedPaths   int      `json:"scanned_paths"`
	FoundFolders   []string `json:"found_folders"`
	CopiedFolders  []string `json:"copied_folders"`
	SkippedFolders []string `json:"skipped_folders"`
	Errors         []string `json:"errors"`
	Cancelled      bool     `json:"cancelled"`
}

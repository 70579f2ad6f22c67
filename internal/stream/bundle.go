package stream

// BundleState is the small state machine from spec.md §9's "Bundle/concat
// framing" design note: it decides, for one file being processed, whether
// a preamble or trailer is due, based on where that file sits within its
// bundle and within the whole run.
type BundleState struct {
	// BundleIndex is this file's 0-based position within its bundle.
	BundleIndex int
	// FileIndex is this file's 0-based position within the whole run.
	FileIndex int
	// TotalFiles is the run's total input file count.
	TotalFiles int
	// BundleSize is the configured number of files per bundle (rc.Bundle).
	BundleSize int
	// Concat collapses every file in the run into a single bundle,
	// regardless of BundleSize.
	Concat bool
}

// IsFirstOfBundle reports whether this file is the first of its bundle,
// i.e. whether a preamble is due before its rows.
func (b BundleState) IsFirstOfBundle() bool {
	return b.BundleIndex == 0
}

// IsLastOfBundle reports whether this file is the last of its bundle,
// i.e. whether a trailer is due after its rows.
func (b BundleState) IsLastOfBundle() bool {
	if b.Concat {
		return b.IsLastOfRun()
	}
	return b.BundleIndex == b.BundleSize-1 || b.IsLastOfRun()
}

// IsLastOfRun reports whether this file is the last input file of the
// whole run.
func (b BundleState) IsLastOfRun() bool {
	return b.FileIndex == b.TotalFiles-1
}

// Next advances to the following file's BundleState: bundle position
// resets to 0 whenever a bundle closes (unless concatenating, in which
// case the whole run is one bundle).
func (b BundleState) Next() BundleState {
	n := b
	n.FileIndex++
	if b.IsLastOfBundle() {
		n.BundleIndex = 0
	} else {
		n.BundleIndex++
	}
	return n
}

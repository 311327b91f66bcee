package ingest

// Options controls input discovery.
type Options struct {
	Recursive  bool // descend into subdirectories
	SkipHidden bool // ignore dot-files and dot-directories
	Dedupe     bool // drop files whose content hash was already seen
}

// Input is one discovered document.
type Input struct {
	Path    string
	Name    string
	HashHex string // sha256 of the content, set only when Options.Dedupe is on
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
}

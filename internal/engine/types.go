package engine

// Result is the terminal outcome for one manifest entry in one run.
type Result struct {
	Path    string
	Success bool
	Message string
}

// MediaRequest describes a file whose sources are exhausted, asking the
// operator to provide the media that carries it.
type MediaRequest struct {
	// Label names the expected disc, when the manifest declares one.
	Label string

	// Path is the logical file name being looked for.
	Path string

	// Size is the expected byte count, or -1 when unknown.
	Size int64

	// MD5 is the expected digest, or empty.
	MD5 string

	// Optional indicates the entry may be skipped with an interrupt.
	Optional bool
}

// Prompter delivers media requests to the operator. The installer emits at
// most one request per file; repeated exhaustions of the same file wait
// silently.
type Prompter interface {
	RequestMedia(req MediaRequest)
}

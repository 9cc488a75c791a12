package repsel

import "errors"

var (
	// ErrInvalidGroupCount is returned when a requested group count lies
	// outside [1, N]. The partition engine never clamps K on its own.
	ErrInvalidGroupCount = errors.New("repsel: invalid group count")

	// ErrDegenerateClustering is returned when a trial leaves one of its K
	// groups empty, or when K is 1 or N and the silhouette is undefined.
	// The selector drops such trials from aggregation.
	ErrDegenerateClustering = errors.New("repsel: degenerate clustering")

	// ErrInsufficientSamples is returned by the selector when the clamped
	// range [KMin, min(KMax, N/2)] is empty.
	ErrInsufficientSamples = errors.New("repsel: insufficient samples")

	// ErrEmptyGroup signals a group id with no members while picking
	// representatives. It indicates a malformed ClusterResult.
	ErrEmptyGroup = errors.New("repsel: empty group")

	// ErrInvalidMatrix is returned for empty, ragged or non-finite feature data.
	ErrInvalidMatrix = errors.New("repsel: invalid feature matrix")
)

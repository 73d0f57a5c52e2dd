package genidx

import (
	"errors"
	"fmt"

	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

var (
	// ErrMalformedFeatureFile is returned when a feature file is unsorted or
	// holds a record that cannot be indexed.
	ErrMalformedFeatureFile = errors.New("malformed feature file")
	// ErrFeatureFileNotFound is returned when the feature file cannot be
	// opened because it does not exist.
	ErrFeatureFileNotFound = errors.New("feature file does not exist")
	// ErrUnableToCreateCorrectIndexType is returned when no index strategy
	// could be chosen or built.
	ErrUnableToCreateCorrectIndexType = errors.New("unable to create correct index type")
	// ErrStaleIndex is returned by VerifySource when the feature file no
	// longer matches the index.
	ErrStaleIndex = errors.New("index is stale")
)

// UnableToReadIndexFileError reports an index file that could not be opened
// or decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type UnableToReadIndexFileError struct {
	Path  string
	cause error
}

func (e *UnableToReadIndexFileError) Error() string {
	return fmt.Sprintf("unable to read index file %s: %v", e.Path, e.cause)
}

func (e *UnableToReadIndexFileError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Unsorted or undecodable input.
	var ooo *creator.OutOfOrderError
	if errors.As(err, &ooo) {
		return fmt.Errorf("%w: %w", ErrMalformedFeatureFile, err)
	}
	var unsorted *creator.UnsortedChromosomeError
	if errors.As(err, &unsorted) {
		return fmt.Errorf("%w: %w", ErrMalformedFeatureFile, err)
	}
	var de *feature.DecodeError
	if errors.As(err, &de) {
		return fmt.Errorf("%w: %w", ErrMalformedFeatureFile, err)
	}
	if errors.Is(err, creator.ErrInvalidFeature) {
		return fmt.Errorf("%w: %w", ErrMalformedFeatureFile, err)
	}

	// Strategy selection.
	if errors.Is(err, index.ErrUnknownType) {
		return fmt.Errorf("%w: %w", ErrUnableToCreateCorrectIndexType, err)
	}

	return err
}

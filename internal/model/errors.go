package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFetch means a provider was unreachable, rejected a symbol or
	// returned nothing usable for the primary symbol.
	ErrDataFetch = errors.New("data fetch failed")
	// ErrInsufficientHistory means the series is shorter than the rolling window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrDegenerateRange means no finite axis range can be derived.
	ErrDegenerateRange = errors.New("degenerate range")
	// ErrConfiguration means an option value is missing or unrecognized.
	ErrConfiguration = errors.New("configuration error")
	// ErrRender means the chart could not be drawn or written.
	ErrRender = errors.New("render failed")
)

// Stage names used in StageError.
const (
	StageConfig = "config"
	StageFetch  = "fetch"
	StageBands  = "bands"
	StageLayout = "layout"
	StageRender = "render"
	StageExport = "export"
)

// StageError tags an error with the pipeline stage it came from.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage wraps err with the stage name. A nil err stays nil.
func Stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

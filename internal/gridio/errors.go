package gridio

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	// NoSuitableDriver: the file cannot be read by any registered format handler
	NoSuitableDriver ErrorCode = iota
	// SingularTransform: the affine matrix is not invertible
	SingularTransform
	// CreateFailed: the output container could not be created
	CreateFailed
	// NoDataSelected: nothing to import (no sub-dataset or none chosen)
	NoDataSelected
	// Cancelled: the operation has been interrupted by the caller
	Cancelled
	// InvalidCellSize: the cell size strategy returned a non-positive or non-finite value
	InvalidCellSize
	// ReadFailed: a band or a layer could not be read
	ReadFailed
)

// ErrReleased is returned when a raster is used after its ownership has been given away
var ErrReleased = errors.New("raster has been released")

type GridioError struct {
	code  ErrorCode
	desc  string
	cause error
}

func newError(code ErrorCode, cause error, desc string, a ...interface{}) error {
	return GridioError{code: code, desc: fmt.Sprintf(desc, a...), cause: cause}
}

// NewNoSuitableDriver creates a new error stating that no driver is able to open a file
func NewNoSuitableDriver(cause error, desc string, a ...interface{}) error {
	return newError(NoSuitableDriver, cause, desc, a...)
}

// NewSingularTransform creates a new error stating that a transform cannot be inverted
func NewSingularTransform(cause error, desc string, a ...interface{}) error {
	return newError(SingularTransform, cause, desc, a...)
}

// NewCreateFailed creates a new error stating that an output cannot be created
func NewCreateFailed(cause error, desc string, a ...interface{}) error {
	return newError(CreateFailed, cause, desc, a...)
}

// NewNoDataSelected creates a new error stating that there is nothing to import
func NewNoDataSelected(desc string, a ...interface{}) error {
	return newError(NoDataSelected, nil, desc, a...)
}

// NewCancelled creates a new error stating that the operation has been interrupted
func NewCancelled(cause error, desc string, a ...interface{}) error {
	return newError(Cancelled, cause, desc, a...)
}

// NewInvalidCellSize creates a new error stating that the output cell size is not usable
func NewInvalidCellSize(desc string, a ...interface{}) error {
	return newError(InvalidCellSize, nil, desc, a...)
}

// NewReadFailed creates a new error stating that some data cannot be read
func NewReadFailed(cause error, desc string, a ...interface{}) error {
	return newError(ReadFailed, cause, desc, a...)
}

// Error implements error
func (e GridioError) Error() string {
	var s string
	switch e.code {
	case NoSuitableDriver:
		s = "NoSuitableDriver"
	case SingularTransform:
		s = "SingularTransform"
	case CreateFailed:
		s = "CreateFailed"
	case NoDataSelected:
		s = "NoDataSelected"
	case Cancelled:
		s = "Cancelled"
	case InvalidCellSize:
		s = "InvalidCellSize"
	case ReadFailed:
		s = "ReadFailed"
	}
	s += ": " + e.desc
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause, if any
func (e GridioError) Unwrap() error {
	return e.cause
}

// Desc returns a description of the error
func (e GridioError) Desc() string {
	return e.desc
}

// Code returns the code of the error
func (e GridioError) Code() ErrorCode {
	return e.code
}

// IsError tests whether error is a GridioError
func IsError(err error, code ErrorCode) bool {
	var gerr GridioError
	return errors.As(err, &gerr) && gerr.Code() == code
}

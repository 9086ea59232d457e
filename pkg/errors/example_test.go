// Package errors provides examples of structured error handling in marcflat.
package errors_test

import (
	"fmt"
	"io"
	"os"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// Example demonstrates basic error creation and wrapping.
func Example() {
	err := errors.New(errors.ErrorTypeConfig, "unknown output shape")

	err = err.WithDetail("shape", "tall").
		WithDetail("allowed", []string{"wide", "long"})

	fmt.Println(err.Error())

	// Output:
	// config: unknown output shape
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeDecoding, "record truncated").
		WithDetail("record", 42)

	if errors.IsType(err, errors.ErrorTypeDecoding) {
		fmt.Println("This is a decoding error")
	}

	if err.Unwrap() == io.ErrUnexpectedEOF {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a decoding error
	// Original error was unexpected EOF
}

// ExampleTypeOf demonstrates mapping errors of a failed run to their phase.
func ExampleTypeOf() {
	_, openErr := os.Open("/definitely/not/here.mrc")
	srcErr := errors.Wrap(openErr, errors.ErrorTypeSourceOpen, "cannot open input")
	sinkErr := errors.New(errors.ErrorTypeSinkOpen, "output directory is read-only")

	fmt.Println(errors.TypeOf(srcErr))
	fmt.Println(errors.TypeOf(sinkErr))
	fmt.Println(errors.TypeOf(io.EOF))

	// Output:
	// source_open
	// sink_open
	// internal
}

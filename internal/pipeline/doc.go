// Package pipeline runs one MARC to CSV conversion.
//
// A Converter reads records from an Opener, flattens them, discovers the
// column schema and writes rows to a sink. Everything happens on the calling
// goroutine, one record at a time.
//
// # Schema discovery
//
// Wide output needs every column before the header can be written. Two
// strategies provide that:
//
//   - buffered (default): every collapsed record is kept in memory until the
//     source is exhausted, then header and rows are written. Memory grows with
//     records x columns. A decoding failure leaves no output at all.
//   - two-pass: the source is read once to build the schema, then reopened and
//     every row is written as soon as it is flattened. Memory grows with the
//     column count only, input is read twice, and the source must be a file.
//
// Long output has a fixed header. Under two-pass it streams in a single pass;
// under buffered it is collected first like wide output.
//
// # Limits and cancellation
//
// Input.Limit caps the records read from the source; later records are never
// decoded. The context is checked once per record.
package pipeline

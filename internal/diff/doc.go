// Package diff parses the unified-diff bodies embedded in migration reports
// into ordered hunks of classified lines with reconciled line numbers.
//
// The input is AI-generated and frequently malformed: hunk headers may be
// missing, descriptive bullets may masquerade as deletions, and fence markers
// may leak into the body. The parser is deliberately lenient: unknown lines
// are tolerated as context, and a header-less diff that still contains change
// lines is wrapped in a single synthetic hunk rather than dropped.
package diff

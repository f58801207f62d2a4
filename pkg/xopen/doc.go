// Package xopen provides types and functions to deal with byte streams in a
// manner that is agnostic to the compression format, or its absence thereof.
//
// Open resolves a source (a local path, "-" for standard input, an s3:// or
// http(s):// URL), peeks at its first bytes and, if they match the magic
// number of a supported container (gzip, xz, bzip2, zstd or lz4), wraps the
// stream in the corresponding decompressor. Whatever the container, the
// caller always receives a buffered reader able to read lines.
//
// Create is the write-side counterpart: the compressor is selected by the
// suffix of the output path, and Close finalizes the container so that its
// trailing footer gets written.
package xopen

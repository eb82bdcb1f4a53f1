// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joinfmt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// A Files reads records from a sequence of input files.
//
// Files whose names end in ".sz" are decoded as snappy framed
// streams.
//
// If AllowLabels is true, entries in Paths may be of the form
// platform=path, and the platform is used for every record in that
// file that does not name its own platform.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	//
	// This is generally the desired behavior when the file list
	// comes from command-line flags.
	AllowStdin bool

	// AllowLabels indicates that platform labels are allowed in
	// Paths.
	AllowLabels bool

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet. Note that this distinguishes nil
	// from length 0.
	inputs []input

	reader  Reader
	file    *os.File
	isStdin bool
	err     error
}

type input struct {
	path     string
	platform string
	isStdin  bool
}

// init does first-use initialization of f.
func (f *Files) init() {
	f.inputs = []input{}
	if f.AllowStdin && len(f.Paths) == 0 {
		f.inputs = append(f.inputs, input{"-", "", true})
	}
	for _, path := range f.Paths {
		platform := ""
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			platform, path = path[:i], path[i+1:]
		}
		isStdin := f.AllowStdin && path == "-"
		f.inputs = append(f.inputs, input{path, platform, isStdin})
	}
}

// Scan advances the reader to the next entry in the sequence of
// files and reports whether an entry was read. The caller should use
// the Result method to get the entry. If Scan reaches the end of the
// file sequence, or if an I/O error occurs, it returns false. In this
// case, the caller should use the Err method to check for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}

	if f.inputs == nil {
		f.init()
	}

	for {
		if f.file == nil {
			// Open the next file.
			if len(f.inputs) == 0 {
				return false
			}
			inp := f.inputs[0]
			f.inputs = f.inputs[1:]

			if inp.isStdin {
				f.isStdin, f.file = true, os.Stdin
			} else {
				file, err := os.Open(inp.path)
				if err != nil {
					f.err = err
					return false
				}
				f.isStdin, f.file = false, file
			}

			var r io.Reader = f.file
			if strings.HasSuffix(inp.path, ".sz") {
				r = snappy.NewReader(f.file)
			}
			f.reader.Reset(r, inp.path, inp.platform)
		}

		if f.reader.Scan() {
			return true
		}
		if err := f.reader.Err(); err != nil {
			f.err = fmt.Errorf("%s: %w", f.file.Name(), err)
			break
		}
		// Just an EOF. Close this file and open the next.
		if !f.isStdin {
			f.file.Close()
		}
		f.file = nil
	}
	return false
}

// Result returns the entry that was just read by Scan.
// See Reader.Result.
func (f *Files) Result() Entry {
	return f.reader.Result()
}

// Err returns the I/O error that stopped Scan, if any.
// If Scan stopped because it read each file to completion,
// or if Scan has not yet returned false, Err returns nil.
func (f *Files) Err() error {
	return f.err
}

// OpenRecords opens a records file for reading, transparently
// decoding snappy-compressed ".sz" files. The caller must close the
// returned ReadCloser.
func OpenRecords(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".sz") {
		return file, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{snappy.NewReader(file), file}, nil
}

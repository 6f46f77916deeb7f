// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"io"
)

// inputLimiter counts the bytes read from r and fails with
// [ErrMaxInputSizeExceeded] once a read would go beyond max. A max of -1
// only counts.
type inputLimiter struct {
	r     io.Reader
	max   int64
	count int64
}

func newInputLimiter(r io.Reader, max int64) *inputLimiter {
	return &inputLimiter{r: r, max: max}
}

func (l *inputLimiter) Read(p []byte) (int, error) {
	if l.max != unlimited {
		left := l.max - l.count
		if left <= 0 && len(p) > 0 {
			return 0, fmt.Errorf("read limit of %d bytes: %w", l.max, ErrMaxInputSizeExceeded)
		}
		if int64(len(p)) > left {
			p = p[:left]
		}
	}
	n, err := l.r.Read(p)
	l.count += int64(n)
	return n, err
}

// Count returns the number of bytes read so far.
func (l *inputLimiter) Count() int64 {
	return l.count
}

// outputLimiter writes at most max bytes to w. The write that crosses the
// limit is cut and fails with [ErrMaxExtractionSizeExceeded].
type outputLimiter struct {
	w       io.Writer
	max     int64
	written int64
}

func (l *outputLimiter) Write(p []byte) (int, error) {
	left := l.max - l.written
	if int64(len(p)) <= left {
		n, err := l.w.Write(p)
		l.written += int64(n)
		return n, err
	}
	if left <= 0 {
		return 0, ErrMaxExtractionSizeExceeded
	}
	n, err := l.w.Write(p[:left])
	l.written += int64(n)
	if err == nil {
		err = ErrMaxExtractionSizeExceeded
	}
	return n, err
}

// limitWriter returns w limited to maxSize bytes. If maxSize < 0, w is returned.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &outputLimiter{w: w, max: maxSize}
}

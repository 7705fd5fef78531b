package parser

import (
	"bufio"
	"io"
)

const (
	lineBufSize = 64 * 1024        // initial read buffer
	maxLineSize = 20 * 1024 * 1024 // transcripts embed large tool output
)

// lineReader iterates JSONL lines, silently skipping blank lines
// and lines that exceed maxLineSize instead of aborting the file.
type lineReader struct {
	r   *bufio.Reader
	buf []byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r:   bufio.NewReaderSize(r, lineBufSize),
		buf: make([]byte, 0, lineBufSize),
	}
}

// next returns the next non-empty line and true, or ("", false)
// at EOF.
func (lr *lineReader) next() (string, bool) {
	for {
		line, err := lr.readLine()
		if err != nil {
			return "", false
		}
		if line != "" {
			return line, true
		}
	}
}

// readLine assembles one full line, returning "" for blank or
// oversized lines and an error only at EOF or read failure.
func (lr *lineReader) readLine() (string, error) {
	lr.buf = lr.buf[:0]
	oversized := false

	for {
		chunk, isPrefix, err := lr.r.ReadLine()
		if err != nil {
			if len(lr.buf) > 0 && err == io.EOF {
				break
			}
			return "", err
		}

		if oversized {
			if !isPrefix {
				return "", nil
			}
			continue
		}

		lr.buf = append(lr.buf, chunk...)
		if len(lr.buf) > maxLineSize {
			oversized = true
			lr.buf = lr.buf[:0]
			if !isPrefix {
				return "", nil
			}
			continue
		}

		if !isPrefix {
			break
		}
	}
	return string(lr.buf), nil
}

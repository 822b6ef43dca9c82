// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cluster

import (
	"bytes"
	"io"
	"regexp"

	"github.com/tochemey/gossipstore/log"
)

var memberlistLogLine = regexp.MustCompile(`\[(DEBUG|INFO|WARN|ERR|ERROR)\] (.+)`)

// logWriter routes memberlist log lines to the store logger at the matching level.
type logWriter struct {
	logger log.Logger
}

// make sure that the logWriter implements the io.Writer interface fully
var _ io.Writer = (*logWriter)(nil)

func newLogWriter(logger log.Logger) *logWriter {
	return &logWriter{logger: logger}
}

// Write implements io.Writer.
func (l *logWriter) Write(message []byte) (int, error) {
	matches := memberlistLogLine.FindSubmatch(bytes.TrimSpace(message))
	if len(matches) < 3 {
		l.logger.Debug(string(bytes.TrimSpace(message)))
		return len(message), nil
	}

	text := string(matches[2])
	switch string(matches[1]) {
	case "DEBUG":
		l.logger.Debug(text)
	case "INFO":
		l.logger.Info(text)
	case "WARN":
		l.logger.Warn(text)
	default:
		l.logger.Error(text)
	}
	return len(message), nil
}

package engine

import (
	"bufio"
	"os"
	"strconv"
	"sync"
)

// ProgressProperty is the style property that carries the smoothed progress
const ProgressProperty = "--scroll-progress"

// FormatProgress renders progress with exactly four fractional digits
func FormatProgress(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}

// StyleSheet is a set of custom style properties shared with the page layer
type StyleSheet struct {
	mu    sync.RWMutex
	props map[string]string
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{props: make(map[string]string)}
}

func (s *StyleSheet) SetProperty(name, value string) {
	s.mu.Lock()
	s.props[name] = value
	s.mu.Unlock()
}

func (s *StyleSheet) Property(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props[name]
}

// StyleExporter publishes the smoothed progress under ProgressProperty
type StyleExporter struct {
	Sheet *StyleSheet
}

func (e *StyleExporter) ObserveProgress(p float64) {
	e.Sheet.SetProperty(ProgressProperty, FormatProgress(p))
}

// ProgressFilePath returns the sidecar path for a rendered video
func ProgressFilePath(output string) string {
	return output + ".progress.txt"
}

// ProgressFile writes one formatted progress line per frame
type ProgressFile struct {
	f     *os.File
	w     *bufio.Writer
	err   error
	lines int
}

func CreateProgressFile(path string) (*ProgressFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &ProgressFile{f: f, w: bufio.NewWriter(f)}, nil
}

func (p *ProgressFile) ObserveProgress(progress float64) {
	if p.err != nil {
		return
	}
	if _, err := p.w.WriteString(FormatProgress(progress) + "\n"); err != nil {
		p.err = err
		return
	}
	p.lines++
}

// Lines returns how many frames have been recorded
func (p *ProgressFile) Lines() int {
	return p.lines
}

// Close flushes the file and reports the first write error, if any
func (p *ProgressFile) Close() error {
	if err := p.w.Flush(); err != nil && p.err == nil {
		p.err = err
	}
	if err := p.f.Close(); err != nil && p.err == nil {
		p.err = err
	}
	return p.err
}

package render

import (
	"fmt"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/hession/gsearch/internal/logger"
)

// CopiedDuration is how long the copy acknowledgement stays visible
const CopiedDuration = 2 * time.Second

// Clipboard writes text to a clipboard
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard is the OS clipboard
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

// WriteText initializes the clipboard on first use and writes text
func (s *SystemClipboard) WriteText(text string) error {
	s.once.Do(func() {
		s.initErr = clipboard.Init()
	})
	if s.initErr != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", s.initErr)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Copier copies answers and tracks the transient "Copied" acknowledgement
type Copier struct {
	clip Clipboard
	now  func() time.Time

	mu       sync.Mutex
	copiedAt time.Time
}

// NewCopier creates a copier writing to clip
func NewCopier(clip Clipboard) *Copier {
	return &Copier{clip: clip, now: time.Now}
}

// Copy writes exactly text to the clipboard and reports whether it
// succeeded. A failure is logged and clears any earlier acknowledgement.
func (c *Copier) Copy(text string) bool {
	err := c.clip.WriteText(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		logger.Error("Copy to clipboard failed: %v", err)
		c.copiedAt = time.Time{}
		return false
	}
	c.copiedAt = c.now()
	return true
}

// Copied reports whether a copy succeeded within the last CopiedDuration
func (c *Copier) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copiedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.copiedAt) < CopiedDuration
}

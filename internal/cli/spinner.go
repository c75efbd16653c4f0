package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line progress message on stderr until it is
// stopped or its context ends.
type Spinner struct {
	out     io.Writer
	message string

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	finished chan struct{} // closed when the draw loop returns; nil before Start
}

func newSpinner(ctx context.Context, message string) *Spinner {
	s := &Spinner{out: os.Stderr, message: message, parent: ctx}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s
}

// Quiet stops the spinner from drawing. Use it when stderr is not a terminal.
func (s *Spinner) Quiet() *Spinner {
	s.out = io.Discard
	return s
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished != nil {
		return
	}
	s.finished = make(chan struct{})
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.finished)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Stop ends the animation and blanks the line. It may be called repeatedly.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()
	if finished != nil {
		<-finished
	}
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/jonwraymond/llmops/classify"
)

const (
	// DefaultMaxChunks bounds runaway streams.
	DefaultMaxChunks = 1000

	// DefaultTimeout bounds the whole consume loop, not individual reads.
	DefaultTimeout = 30 * time.Second

	eventStreamContentType = "text/event-stream"
	doneMarker             = "[DONE]"

	rawReadSize    = 4 * 1024
	maxEventLine   = 1024 * 1024
	eventLineStart = 64 * 1024
)

// Options configures one Consume call. All callbacks are optional and are
// invoked from the calling goroutine.
type Options struct {
	// OnChunk receives each content chunk in arrival order. After the last
	// content chunk it is called once more with an empty chunk and done
	// set to true.
	OnChunk func(chunk string, done bool)

	// OnComplete receives the full accumulated text on success.
	OnComplete func(full string)

	// OnError receives the classified failure before it is returned.
	OnError func(details classify.ErrorDetails)

	// MaxChunks stops the stream after this many content chunks.
	// Zero means DefaultMaxChunks.
	MaxChunks int

	// Timeout bounds the whole consume loop. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Consume reads the response body to completion and returns the accumulated
// text. Read failures surface as network-classified details, an expired
// deadline as timeout-classified details; either is reported through
// Options.OnError and then returned. The body is closed on every exit path.
func Consume(ctx context.Context, body io.ReadCloser, contentType string, opts Options) (string, error) {
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	// Closing the body unblocks a reader stuck in Read; closing stop
	// unblocks one stuck handing off a chunk. Defers run in that order on
	// every return below.
	defer body.Close()
	stop := make(chan struct{})
	defer close(stop)

	chunks := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		emit := func(chunk string) bool {
			select {
			case chunks <- chunk:
				return true
			case <-stop:
				return false
			}
		}
		if isEventStream(contentType) {
			readErr <- readEvents(body, emit)
		} else {
			readErr <- readRaw(body, emit)
		}
	}()

	var full strings.Builder
	count := 0

	fail := func(details classify.ErrorDetails) (string, error) {
		if opts.OnError != nil {
			opts.OnError(details)
		}
		return full.String(), &details
	}

	finish := func() (string, error) {
		text := full.String()
		if opts.OnChunk != nil {
			opts.OnChunk("", true)
		}
		if opts.OnComplete != nil {
			opts.OnComplete(text)
		}
		return text, nil
	}

	for {
		select {
		case <-ctx.Done():
			// Deadline expiry classifies as timeout, caller cancellation
			// stays generic.
			return fail(classify.Classify(ctx.Err()))

		case chunk, ok := <-chunks:
			if !ok {
				if err := <-readErr; err != nil {
					return fail(classify.ForCategory(classify.CategoryNetwork, err))
				}
				return finish()
			}
			full.WriteString(chunk)
			if opts.OnChunk != nil {
				opts.OnChunk(chunk, false)
			}
			count++
			if count >= opts.MaxChunks {
				return finish()
			}
		}
	}
}

// isEventStream reports whether the Content-Type announces SSE framing.
func isEventStream(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), eventStreamContentType)
}

// readEvents scans SSE frames: only "data:" lines carry content, and a
// literal [DONE] payload ends the stream.
func readEvents(r io.Reader, emit func(string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, eventLineStart), maxEventLine)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimPrefix(payload, " ")
		if payload == doneMarker {
			return nil
		}
		if payload == "" {
			continue
		}
		if !emit(payload) {
			return nil
		}
	}
	return scanner.Err()
}

// readRaw forwards every read as one content chunk.
func readRaw(r io.Reader, emit func(string) bool) error {
	buf := make([]byte, rawReadSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if !emit(string(buf[:n])) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"file-storage-api/internal/domain/apperr"
)

var ErrStalled = errors.New("transfer stalled")

// chunkCopier moves a payload in fixed-size chunks. Reads from src happen on
// a helper goroutine so a read that makes no progress within timeout fails
// the copy instead of blocking it.
type chunkCopier struct {
	size    int
	timeout time.Duration
}

type chunk struct {
	buf []byte
	n   int
	err error
}

func (c chunkCopier) Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	free := make(chan []byte, 2)
	full := make(chan chunk)
	quit := make(chan struct{})
	defer close(quit)

	free <- make([]byte, c.size)
	free <- make([]byte, c.size)

	go func() {
		for {
			var buf []byte
			select {
			case buf = <-free:
			case <-quit:
				return
			}

			n, err := src.Read(buf)
			select {
			case full <- chunk{buf: buf, n: n, err: err}:
			case <-quit:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var written int64
	for {
		select {
		case ch := <-full:
			if ch.n > 0 {
				n, err := dst.Write(ch.buf[:ch.n])
				written += int64(n)
				if err != nil {
					return written, err
				}
				if n != ch.n {
					return written, io.ErrShortWrite
				}
			}
			free <- ch.buf

			if errors.Is(ch.err, io.EOF) {
				return written, nil
			}
			if ch.err != nil {
				return written, ch.err
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.timeout)
		case <-timer.C:
			return written, apperr.Internal(fmt.Errorf("%w: no data for %s", ErrStalled, c.timeout))
		case <-ctx.Done():
			return written, ctx.Err()
		}
	}
}

// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// Buffer is a reusable byte buffer for certificate input reads. It
// abstracts [bytebufferpool.ByteBuffer] so callers never depend on the
// pool implementation directly.
type Buffer interface {
	WriteString(s string) (int, error)
	Bytes() []byte
	Len() int
	Reset()
	ReadFrom(r io.Reader) (int64, error)
}

// Pool hands out reusable buffers. Implementations must be safe for
// concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool.
type pool struct{ p *bytebufferpool.Pool }

func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool. Buffers from other implementations
// are dropped rather than pooled.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the shared buffer pool for certificate I/O. Chain files,
// anchor bundles, and AI API error bodies are read through it so repeated
// tool calls reuse allocations instead of growing fresh buffers.
//
// The buffer's contents alias pool-owned memory: copy Bytes() before
// Put when the data outlives the buffer, and Reset before Put so stale
// certificate data never leaks into the next borrower.
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()
//		gc.Default.Put(buf)
//	}()
//
//	if _, err := buf.ReadFrom(chainFile); err != nil {
//		return nil, fmt.Errorf("failed to read chain file: %w", err)
//	}
//	certs, err := codec.DecodeMultiple(buf.Bytes())
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

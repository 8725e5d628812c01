// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPEM = `-----BEGIN CERTIFICATE-----
MIIBszCCAVmgAwIBAgIUfakefakefakefakefakefakefakefake
-----END CERTIFICATE-----
`

func TestReadCertificateStream(t *testing.T) {
	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()

	n, err := buf.ReadFrom(strings.NewReader(testPEM))
	require.NoError(t, err)
	assert.Equal(t, int64(len(testPEM)), n)
	assert.Equal(t, testPEM, string(buf.Bytes()))
	assert.Equal(t, len(testPEM), buf.Len())
}

func TestReadFromPropagatesError(t *testing.T) {
	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()

	readErr := errors.New("truncated chain file")
	_, err := buf.ReadFrom(io.MultiReader(
		strings.NewReader("-----BEGIN"),
		&failingReader{err: readErr},
	))
	assert.ErrorIs(t, err, readErr)
}

func TestResetClearsPreviousInput(t *testing.T) {
	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()

	_, err := buf.WriteString(testPEM)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	buf.Reset()
	assert.Zero(t, buf.Len())

	// A reused buffer must start from the fresh input, not append to
	// the previous certificate's bytes.
	_, err = buf.ReadFrom(bytes.NewReader([]byte{0x30, 0x82}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x82}, buf.Bytes())
}

func TestPutDropsForeignBuffers(t *testing.T) {
	// A Buffer from another implementation must not poison the pool.
	Default.Put(&failingBuffer{})

	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()
	_, err := buf.WriteString("ok")
	assert.NoError(t, err)
}

func TestConcurrentBorrowers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				buf := Default.Get()
				if _, err := buf.ReadFrom(strings.NewReader(testPEM)); err != nil {
					t.Errorf("ReadFrom: %v", err)
				}
				if got := string(buf.Bytes()); got != testPEM {
					t.Errorf("buffer carried stale data: %q", got)
				}
				buf.Reset()
				Default.Put(buf)
			}
		}()
	}
	wg.Wait()
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

// failingBuffer implements Buffer without being pool-backed.
type failingBuffer struct{}

func (*failingBuffer) WriteString(string) (int, error)   { return 0, errors.New("not pooled") }
func (*failingBuffer) Bytes() []byte                     { return nil }
func (*failingBuffer) Len() int                          { return 0 }
func (*failingBuffer) Reset()                            {}
func (*failingBuffer) ReadFrom(io.Reader) (int64, error) { return 0, errors.New("not pooled") }

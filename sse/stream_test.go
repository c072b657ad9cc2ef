package sse_test

import (
	"io"
	"strings"
	"testing"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader records how many reads happened and whether it was closed.
type countingReader struct {
	r      io.Reader
	reads  int
	closed bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func (c *countingReader) Close() error {
	c.closed = true
	return nil
}

func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("states", func(t *testing.T) {
		t.Parallel()
		body := &countingReader{r: strings.NewReader("data: {\"id\":\"1\",\"value\":1}\ndata: [DONE]\n")}
		s := sse.NewStream[item](body)
		assert.Equal(t, deepseek.StreamStateNew, s.State())

		v, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, item{"1", 1}, v)
		assert.Equal(t, deepseek.StreamStateStreaming, s.State())
		assert.False(t, body.closed)

		_, err = s.Next()
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, deepseek.StreamStateComplete, s.State())
		assert.True(t, body.closed)

		_, err = s.Next()
		assert.Equal(t, io.EOF, err, "pulls after termination are idempotent")
		require.NoError(t, s.Close())
		assert.Equal(t, deepseek.StreamStateComplete, s.State())
	})

	t.Run("close before end", func(t *testing.T) {
		t.Parallel()
		body := &countingReader{r: strings.NewReader("data: {\"id\":\"1\",\"value\":1}\ndata: {\"id\":\"2\",\"value\":2}\n")}
		s := sse.NewStream[item](body)

		_, err := s.Next()
		require.NoError(t, err)
		reads := body.reads

		require.NoError(t, s.Close())
		assert.True(t, body.closed)
		assert.Equal(t, deepseek.StreamStateClosed, s.State())

		_, err = s.Next()
		assert.ErrorIs(t, err, deepseek.ErrStreamClosed)
		assert.Equal(t, reads, body.reads, "no reads after close")
	})

	t.Run("terminator stops reading", func(t *testing.T) {
		t.Parallel()
		body := &countingReader{r: &chunkReader{chunks: [][]byte{
			[]byte("data: [DONE]\n"),
			[]byte("data: {\"id\":\"1\",\"value\":1}\n"),
		}}}
		s := sse.NewStream[item](body)

		_, err := s.Next()
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, 1, body.reads)
	})

	t.Run("all stops when the consumer breaks", func(t *testing.T) {
		t.Parallel()
		body := &countingReader{r: strings.NewReader("data: {\"id\":\"1\",\"value\":1}\ndata: {\"id\":\"2\",\"value\":2}\n")}
		s := sse.NewStream[item](body)

		var got []item
		for v, err := range s.All() {
			require.NoError(t, err)
			got = append(got, v)
			break
		}
		assert.Equal(t, []item{{"1", 1}}, got)
		assert.Equal(t, deepseek.StreamStateStreaming, s.State())
	})

	t.Run("all yields recoverable errors", func(t *testing.T) {
		t.Parallel()
		body := &countingReader{r: strings.NewReader("bad\ndata: {\"id\":\"1\",\"value\":1}\n")}
		s := sse.NewStream[item](body)

		var errs, items int
		for _, err := range s.All() {
			if err != nil {
				assert.True(t, sse.IsRecoverable(err))
				errs++
				continue
			}
			items++
		}
		assert.Equal(t, 1, errs)
		assert.Equal(t, 1, items)
	})
}

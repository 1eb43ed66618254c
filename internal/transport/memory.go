package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryTransport serves an object from a byte slice. Faults are queued and
// consumed one per GetRange call, which lets tests script mid-stream resets,
// short responses, and transient errors.
type MemoryTransport struct {
	Data []byte

	mu          sync.Mutex
	faults      []GetFault
	headErr     error
	getCalls    int
	bytesServed int64
	ranges      []string
}

// GetFault describes how the next GetRange call should misbehave.
type GetFault struct {
	// Err fails the call outright before any bytes are served.
	Err error
	// Truncate limits the stream to TruncateAfter bytes. The stream then
	// returns StreamErr, or ends with a premature clean EOF when StreamErr
	// is nil.
	Truncate      bool
	TruncateAfter int64
	StreamErr     error
	// ReportedLength overrides the content length reported for the call.
	ReportedLength int64
}

func NewMemoryTransport(data []byte) *MemoryTransport {
	return &MemoryTransport{Data: data}
}

// PushFault queues a fault for a future GetRange call.
func (m *MemoryTransport) PushFault(f GetFault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, f)
}

// SetHeadError makes Head fail until cleared.
func (m *MemoryTransport) SetHeadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headErr = err
}

// GetCalls reports how many GetRange calls were made.
func (m *MemoryTransport) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// BytesServed reports the total bytes streamed out over all calls.
func (m *MemoryTransport) BytesServed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytesServed
}

// Ranges reports every range header equivalent requested, in order.
func (m *MemoryTransport) Ranges() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ranges...)
}

func (m *MemoryTransport) Head(ctx context.Context, bucket, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.headErr != nil {
		return 0, m.headErr
	}
	return int64(len(m.Data)), nil
}

func (m *MemoryTransport) GetRange(ctx context.Context, bucket, key string, start, end int64) (int64, io.ReadCloser, error) {
	m.mu.Lock()
	m.getCalls++
	m.ranges = append(m.ranges, fmt.Sprintf("bytes=%d-%d", start, end))
	var fault *GetFault
	if len(m.faults) > 0 {
		fault = &m.faults[0]
		m.faults = m.faults[1:]
	}
	m.mu.Unlock()

	if start < 0 || end >= int64(len(m.Data)) || start > end+1 {
		return 0, nil, fmt.Errorf("range bytes=%d-%d outside object of size %d", start, end, len(m.Data))
	}
	if fault != nil && fault.Err != nil {
		return 0, nil, fault.Err
	}

	body := m.Data[start : end+1]
	length := int64(len(body))
	reported := length
	if fault != nil {
		if fault.ReportedLength > 0 {
			reported = fault.ReportedLength
		}
		if fault.Truncate && fault.TruncateAfter < length {
			short := body[:fault.TruncateAfter]
			if fault.StreamErr != nil {
				return reported, &meteredReader{
					m: m,
					r: &faultyReader{r: bytes.NewReader(short), err: fault.StreamErr},
				}, nil
			}
			return reported, &meteredReader{m: m, r: io.NopCloser(bytes.NewReader(short))}, nil
		}
	}
	return reported, &meteredReader{m: m, r: io.NopCloser(bytes.NewReader(body))}, nil
}

// faultyReader serves its underlying bytes and then fails instead of EOF.
type faultyReader struct {
	r   *bytes.Reader
	err error
}

func (f *faultyReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		return n, f.err
	}
	return n, err
}

func (f *faultyReader) Close() error { return nil }

// meteredReader counts bytes actually streamed out of the transport.
type meteredReader struct {
	m *MemoryTransport
	r io.ReadCloser
}

func (mr *meteredReader) Read(p []byte) (int, error) {
	n, err := mr.r.Read(p)
	if n > 0 {
		mr.m.mu.Lock()
		mr.m.bytesServed += int64(n)
		mr.m.mu.Unlock()
	}
	return n, err
}

func (mr *meteredReader) Close() error { return mr.r.Close() }

package mdc

import "testing"

func TestFloatPoolReusesReleasedBuffer(t *testing.T) {
	var p floatPool
	a := p.acquire(8)
	if got := p.numBuffers(); got != 1 {
		t.Fatalf("numBuffers() = %d, want 1", got)
	}
	if err := p.release(a); err != nil {
		t.Fatalf("release: %v", err)
	}
	b := p.acquire(8)
	if got := p.numBuffers(); got != 1 {
		t.Fatalf("numBuffers() after reuse = %d, want 1 (expected reuse, not reallocation)", got)
	}
	if &a[:1][0] != &b[:1][0] {
		t.Error("acquire after release did not reuse the freed buffer")
	}
}

func TestFloatPoolAcquireIsZeroed(t *testing.T) {
	var p floatPool
	a := p.acquire(4)
	for i := range a {
		a[i] = 1
	}
	p.release(a)
	b := p.acquire(4)
	for i, v := range b {
		if v != 0 {
			t.Errorf("b[%d] = %v, want 0 (reused buffer must be zeroed)", i, v)
		}
	}
}

func TestFloatPoolReleaseUnknownBufferErrors(t *testing.T) {
	var p floatPool
	foreign := make([]float32, 4)
	if err := p.release(foreign); err == nil {
		t.Error("release of a foreign buffer should error")
	}
}

func TestFloatPoolGrowsWhenAllAcquired(t *testing.T) {
	var p floatPool
	p.acquire(4)
	p.acquire(4)
	if got := p.numBuffers(); got != 2 {
		t.Fatalf("numBuffers() = %d, want 2 (both outstanding, second acquire must allocate)", got)
	}
}

package host

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceiveBatch_contextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan int, 1)
	ch <- 1
	err := receiveBatch(ctx, nil, ch, func(int) error {
		t.Error("unexpected value")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiveBatch_closed(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 1
	close(ch)
	var got []int
	err := receiveBatch(context.Background(), nil, ch, func(v int) error {
		got = append(got, v)
		return nil
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []int{1}, got)
}

func TestReceiveBatch_maxSize(t *testing.T) {
	ch := make(chan int, 10)
	for i := range 10 {
		ch <- i
	}
	var got []int
	err := receiveBatch(context.Background(), &BatchConfig{MaxSize: 3}, ch, func(v int) error {
		got = append(got, v)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Len(t, ch, 7)
}

func TestReceiveBatch_takesAvailable(t *testing.T) {
	ch := make(chan int, 10)
	for i := range 5 {
		ch <- i
	}
	var got []int
	err := receiveBatch(context.Background(), nil, ch, func(v int) error {
		got = append(got, v)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestReceiveBatch_partialTimeout(t *testing.T) {
	ch := make(chan int, 10)
	ch <- 1
	start := time.Now()
	var got []int
	err := receiveBatch(context.Background(), &BatchConfig{MinSize: 5, PartialTimeout: 30 * time.Millisecond}, ch, func(v int) error {
		got = append(got, v)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestReceiveBatch_waitsForFirst(t *testing.T) {
	ch := make(chan int)
	go func() {
		time.Sleep(20 * time.Millisecond)
		ch <- 7
	}()
	var got []int
	err := receiveBatch(context.Background(), nil, ch, func(v int) error {
		got = append(got, v)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{7}, got)
}

func TestReceiveBatch_handlerError(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 1
	ch <- 2
	err := receiveBatch(context.Background(), nil, ch, func(int) error { return errTest })
	assert.ErrorIs(t, err, errTest)
	assert.Len(t, ch, 1)
}

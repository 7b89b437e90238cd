package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLockerTimesOut(t *testing.T) {
	l := NewMutexLocker()
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx)
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock2, err := l.Lock(context.Background())
	require.NoError(t, err)
	unlock2()
}

func TestNewLocker(t *testing.T) {
	l, err := NewLocker("", nil)
	require.NoError(t, err)
	assert.IsType(t, NopLocker{}, l)

	l, err = NewLocker("process", nil)
	require.NoError(t, err)
	assert.IsType(t, &MutexLocker{}, l)

	_, err = NewLocker("redis", nil)
	assert.Error(t, err)

	_, err = NewLocker("flock", nil)
	assert.Error(t, err)
}

func TestLockersSatisfyLocker(t *testing.T) {
	for _, l := range []Locker{NopLocker{}, NewMutexLocker(), &RedisLocker{}} {
		assert.NotNil(t, l)
	}
	unlock, err := Locker(NopLocker{}).Lock(context.Background())
	require.NoError(t, err)
	unlock()
}

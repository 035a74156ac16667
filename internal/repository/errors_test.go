package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorClassification(t *testing.T) {
	conflict := storeErr("insert", KindConflict, errors.New("dup"))
	transient := storeErr("insert", KindTransient, errors.New("timeout"))
	fatal := storeErr("insert", KindFatal, errors.New("syntax"))

	assert.True(t, IsConflict(conflict))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", conflict), ErrConflict))
	assert.False(t, IsConflict(transient))

	assert.True(t, IsTransient(transient))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", transient)))
	assert.False(t, IsTransient(fatal))
	assert.False(t, IsTransient(nil))

	assert.Equal(t, KindFatal, KindOf(errors.New("plain")))
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Contains(t, transient.Error(), "transient")
}

func TestIsTransientNetwork(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"reset", syscall.ECONNRESET, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("bad query"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientNetwork(tt.err))
		})
	}
}

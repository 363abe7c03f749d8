package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-ai/skiff/internal/log"
)

func TestGateCheck(t *testing.T) {
	gate := NewGate(log.NewNop())

	tests := []struct {
		name      string
		kind      string
		payload   string
		shouldErr bool
	}{
		{
			name:      "benign command",
			kind:      "command",
			payload:   "ls -la /tmp",
			shouldErr: false,
		},
		{
			name:      "benign code",
			kind:      "code",
			payload:   "print(sum(range(10)))",
			shouldErr: false,
		},
		{
			name:      "recursive root delete",
			kind:      "command",
			payload:   "rm -rf / --no-preserve-root",
			shouldErr: true,
		},
		{
			name:      "recursive home delete",
			kind:      "command",
			payload:   "rm -rf ~",
			shouldErr: true,
		},
		{
			name:      "disk format",
			kind:      "command",
			payload:   "mkfs.ext4 /dev/sda1",
			shouldErr: true,
		},
		{
			name:      "zero fill",
			kind:      "command",
			payload:   "dd if=/dev/zero of=/dev/sda",
			shouldErr: true,
		},
		{
			name:      "fork bomb",
			kind:      "command",
			payload:   ":(){ :|:& };:",
			shouldErr: true,
		},
		{
			name:      "shutdown embedded in code",
			kind:      "code",
			payload:   `import os; os.system("shutdown -h now")`,
			shouldErr: true,
		},
		{
			name:      "case insensitive match",
			kind:      "command",
			payload:   "SHUTDOWN now",
			shouldErr: true,
		},
		{
			name:      "null byte",
			kind:      "code",
			payload:   "print('hi')\x00",
			shouldErr: true,
		},
		{
			name:      "mentions rm without destructive target",
			kind:      "command",
			payload:   "rm /tmp/scratch.txt",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.kind, tt.payload)
			if tt.shouldErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDangerousOperation),
					"gate rejections must wrap ErrDangerousOperation, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGateErrorNamesPattern(t *testing.T) {
	gate := NewGate(log.NewNop())

	err := gate.Check("command", "sudo su -")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sudo su")
	assert.Contains(t, err.Error(), "command")
}

func TestGateConcurrentUse(t *testing.T) {
	gate := NewGate(log.NewNop())

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				_ = gate.Check("command", "echo ok")
				_ = gate.Check("code", "rm -rf /")
			}
		}()
	}
	for range 8 {
		<-done
	}
}

func TestExpandPath(t *testing.T) {
	t.Run("tilde expands to home", func(t *testing.T) {
		got, err := ExpandPath("~/notes.txt")
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(got, "~"))
		assert.True(t, strings.HasSuffix(got, "notes.txt"))
	})

	t.Run("bare tilde is home", func(t *testing.T) {
		got, err := ExpandPath("~")
		require.NoError(t, err)
		assert.NotEmpty(t, got)
		assert.False(t, strings.Contains(got, "~"))
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		got, err := ExpandPath("some/dir")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "/"))
	})

	t.Run("dot segments are cleaned", func(t *testing.T) {
		got, err := ExpandPath("/a/b/../c")
		require.NoError(t, err)
		assert.Equal(t, "/a/c", got)
	})

	t.Run("empty path rejected", func(t *testing.T) {
		_, err := ExpandPath("")
		assert.Error(t, err)
	})
}

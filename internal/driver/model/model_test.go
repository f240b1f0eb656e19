package model

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

func newTestDriver() *Driver {
	return NewDriver([]string{"assistant-small", "embedder"})
}

func TestDriver_PromptCompletionFlow(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver()

	// Submit a prompt.
	written, err := driver.Write(ctx, "assistant-small/prompt", []byte("summarize the report"))
	require.NoError(t, err)
	assert.Equal(t, 20, written)

	// The prompt reads back as written.
	prompt, err := driver.Read(ctx, "assistant-small/prompt")
	require.NoError(t, err)
	assert.Equal(t, []byte("summarize the report"), prompt)

	// The completion references the submitted prompt.
	completion, err := driver.Read(ctx, "assistant-small/completion")
	require.NoError(t, err)
	assert.Contains(t, string(completion), "model=assistant-small")
	assert.Contains(t, string(completion), "prompt_bytes=20")
	assert.Contains(t, string(completion), "summarize the report")
}

func TestDriver_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UnsubmittedPromptIsEmpty", func(t *testing.T) {
		driver := newTestDriver()

		prompt, err := driver.Read(ctx, "embedder/prompt")

		require.NoError(t, err)
		assert.Empty(t, prompt)
	})

	t.Run("Success_CompletionIsDeterministic", func(t *testing.T) {
		driver := newTestDriver()
		_, err := driver.Write(ctx, "embedder/prompt", []byte("embed this"))
		require.NoError(t, err)

		first, err := driver.Read(ctx, "embedder/completion")
		require.NoError(t, err)
		second, err := driver.Read(ctx, "embedder/completion")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Error_CompletionWithoutPrompt", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Read(ctx, "embedder/completion")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_UnknownModel", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Read(ctx, "unknown/prompt")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error_UnknownFile", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Read(ctx, "embedder/weights")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDriver_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PromptOverwritten", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Write(ctx, "embedder/prompt", []byte("first"))
		require.NoError(t, err)
		_, err = driver.Write(ctx, "embedder/prompt", []byte("second"))
		require.NoError(t, err)

		prompt, err := driver.Read(ctx, "embedder/prompt")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), prompt)
	})

	t.Run("Error_CompletionIsReadOnly", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Write(ctx, "embedder/completion", []byte("forged result"))

		assert.ErrorIs(t, err, apperrors.ErrNotSupported)
	})

	t.Run("Error_EmptyPrompt", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Write(ctx, "embedder/prompt", []byte{})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestDriver_ReadDir(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RootListsCatalogSorted", func(t *testing.T) {
		driver := NewDriver([]string{"zephyr", "assistant-small"})

		entries, err := driver.ReadDir(ctx, "")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "assistant-small", entries[0].Name)
		assert.Equal(t, domain.DirectoryNode, entries[0].Kind)
		assert.Equal(t, "zephyr", entries[1].Name)
	})

	t.Run("Success_ModelDirectoryListsFiles", func(t *testing.T) {
		driver := newTestDriver()

		entries, err := driver.ReadDir(ctx, "embedder")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "completion", entries[0].Name)
		assert.Equal(t, "prompt", entries[1].Name)
		assert.Equal(t, domain.FileNode, entries[0].Kind)
	})

	t.Run("Error_UnknownModel", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.ReadDir(ctx, "unknown")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDriver_GetAttr(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RootIsDirectory", func(t *testing.T) {
		driver := newTestDriver()

		node, err := driver.GetAttr(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, domain.DirectoryNode, node.Kind)
	})

	t.Run("Success_ModelIsDirectory", func(t *testing.T) {
		driver := newTestDriver()

		node, err := driver.GetAttr(ctx, "embedder")

		require.NoError(t, err)
		assert.Equal(t, domain.DirectoryNode, node.Kind)
	})

	t.Run("Success_PromptIsWritable", func(t *testing.T) {
		driver := newTestDriver()
		_, err := driver.Write(ctx, "embedder/prompt", []byte("hello"))
		require.NoError(t, err)

		node, err := driver.GetAttr(ctx, "embedder/prompt")

		require.NoError(t, err)
		assert.Equal(t, domain.FileNode, node.Kind)
		assert.Equal(t, uint32(0o644), node.Mode)
		assert.Equal(t, int64(5), node.Size)
	})

	t.Run("Success_CompletionIsReadOnly", func(t *testing.T) {
		driver := newTestDriver()

		node, err := driver.GetAttr(ctx, "embedder/completion")

		require.NoError(t, err)
		assert.Equal(t, domain.FileNode, node.Kind)
		assert.Equal(t, uint32(0o444), node.Mode)
	})

	t.Run("Error_UnknownPath", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.GetAttr(ctx, "embedder/weights")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = driver.GetAttr(ctx, "unknown/prompt")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDriver_OpenRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OpenModelFile", func(t *testing.T) {
		driver := newTestDriver()

		state, err := driver.Open(ctx, "embedder/prompt", domain.OpenWrite)

		require.NoError(t, err)
		assert.Nil(t, state)
		assert.NoError(t, driver.Release(ctx, state))
	})

	t.Run("Error_OpenUnknownTarget", func(t *testing.T) {
		driver := newTestDriver()

		_, err := driver.Open(ctx, "unknown/prompt", domain.OpenRead)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDriver_LongPromptExcerptTruncated(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver()

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	_, err := driver.Write(ctx, "embedder/prompt", long)
	require.NoError(t, err)

	completion, err := driver.Read(ctx, "embedder/completion")
	require.NoError(t, err)
	assert.Contains(t, string(completion), fmt.Sprintf("prompt_bytes=%d", len(long)))
	assert.Less(t, len(completion), 200, "excerpt is truncated")
}

package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	exec, err := NewExecutor(twoStepSpec(t), twoStepRegistry(t))
	require.NoError(t, err)

	return NewSession(exec)
}

func TestSessionWalkThrough(t *testing.T) {
	session := newTestSession(t)

	stepID, ok := session.CurrentStepID()
	require.True(t, ok)
	assert.Equal(t, "step1", stepID)
	assert.Equal(t, 0, session.StepIndex())
	assert.False(t, session.Complete())

	result, err := session.RunCurrent(context.Background(), []Field{String("in", "go")})
	require.NoError(t, err)
	assert.Equal(t, result.Output, session.LastOutput())
	assert.Equal(t, 0, session.StepIndex(), "running must not advance")

	prefilled, err := session.Advance()
	require.NoError(t, err)
	assert.Equal(t, []Field{String("a", "go-a"), Float("c", 1.0)}, prefilled)
	assert.Equal(t, 1, session.StepIndex())
	assert.Nil(t, session.LastOutput(), "recorded output is consumed by the move")

	_, err = session.RunCurrent(context.Background(), prefilled)
	require.NoError(t, err)

	finished, err := session.Advance()
	require.NoError(t, err)
	assert.Nil(t, finished)
	assert.True(t, session.Complete())

	_, ok = session.CurrentStepID()
	assert.False(t, ok)
}

func TestSessionCompleteRejectsFurtherWork(t *testing.T) {
	session := newTestSession(t)
	require.NoError(t, session.JumpTo(1))

	_, err := session.Advance()
	require.NoError(t, err)
	require.True(t, session.Complete())

	_, err = session.RunCurrent(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSessionComplete)

	_, err = session.Advance()
	assert.ErrorIs(t, err, ErrSessionComplete)

	assert.ErrorIs(t, session.JumpTo(0), ErrSessionComplete)
}

func TestSessionAdvanceWithoutRun(t *testing.T) {
	session := newTestSession(t)

	// No recorded output, so the prefill is template defaults only.
	prefilled, err := session.Advance()
	require.NoError(t, err)
	assert.Equal(t, []Field{String("a", ""), Float("c", 1.0)}, prefilled)
}

func TestSessionJumpTo(t *testing.T) {
	session := newTestSession(t)

	t.Run("out of range", func(t *testing.T) {
		assert.Error(t, session.JumpTo(-1))
		assert.Error(t, session.JumpTo(2))
	})

	t.Run("jump clears recorded output", func(t *testing.T) {
		_, err := session.RunCurrent(context.Background(), []Field{String("in", "go")})
		require.NoError(t, err)
		require.NotNil(t, session.LastOutput())

		require.NoError(t, session.JumpTo(1))
		assert.Equal(t, 1, session.StepIndex())
		assert.Nil(t, session.LastOutput())
	})

	t.Run("entered step still type-checks its input", func(t *testing.T) {
		// Nothing ran before the jump; the input contract still applies.
		_, err := session.RunCurrent(context.Background(), []Field{Int("a", 1)})

		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "a", mismatch.Field)

		_, err = session.RunCurrent(context.Background(), []Field{String("a", "x"), Float("c", 2.0)})
		assert.NoError(t, err)
	})
}

func TestSessionReset(t *testing.T) {
	session := newTestSession(t)

	require.NoError(t, session.JumpTo(1))
	_, err := session.Advance()
	require.NoError(t, err)
	require.True(t, session.Complete())

	session.Reset()
	assert.False(t, session.Complete())
	assert.Equal(t, 0, session.StepIndex())
	assert.Nil(t, session.LastOutput())

	stepID, ok := session.CurrentStepID()
	require.True(t, ok)
	assert.Equal(t, "step1", stepID)
}

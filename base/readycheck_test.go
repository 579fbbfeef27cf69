package base

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCheckOptions_Add(t *testing.T) {
	mco := NewMapCheckOptions()

	assert.ErrorIs(t, mco.Add(nil), ErrOptionsIsNil)
	assert.ErrorIs(t, mco.Add(&CheckOptions{Name: "x"}), ErrFuncIsNil)
	assert.ErrorIs(t, mco.Add(&CheckOptions{CheckFunc: func(context.Context) error { return nil }}), ErrEmptyOptionsName)

	options := &CheckOptions{
		Name:      "CONNECTED",
		CheckFunc: func(context.Context) error { return nil },
	}
	require.NoError(t, mco.Add(options))
	assert.ErrorIs(t, mco.Add(options), ErrConflictName)
}

func TestMapCheckOptions_Append(t *testing.T) {
	poolChecks := NewMapCheckOptions()
	require.NoError(t, poolChecks.Add(&CheckOptions{
		Name:      "POOL_A",
		CheckFunc: func(context.Context) error { return nil },
	}))

	app := NewMapCheckOptions()
	require.NoError(t, app.Append(poolChecks))
	assert.NoError(t, app.Check(context.Background()))

	assert.ErrorIs(t, app.Append(poolChecks), ErrConflictName)
}

func TestMapCheckOptions_Check(t *testing.T) {
	mco := NewMapCheckOptions()
	require.NoError(t, mco.Add(&CheckOptions{
		Name:      "OK",
		CheckFunc: func(context.Context) error { return nil },
	}))

	assert.NoError(t, mco.Check(context.Background()))

	require.NoError(t, mco.Add(&CheckOptions{
		Name:      "FAILING",
		CheckFunc: func(context.Context) error { return ErrNotConnected },
	}))

	err := mco.Check(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "FAILING")
}

func TestEnity_Naming(t *testing.T) {
	enity := NewEnity(&EnityDeps{ProviderName: "connpool", Name: "graph"})

	assert.Equal(t, "graph", enity.GetName())
	assert.Equal(t, "connpool_graph", enity.GetFullName())
	assert.NotNil(t, enity.GetLogger(context.Background()))
}

func TestErrorsAreDistinguishable(t *testing.T) {
	wrapped := errors.Wrap(ErrNotConnected, "pool check")
	assert.ErrorIs(t, wrapped, ErrNotConnected)
	assert.False(t, errors.Is(wrapped, ErrConflictName))
}

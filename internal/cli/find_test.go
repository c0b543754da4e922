package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rootseek"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/registry"
	"github.com/aretw0/rootseek/pkg/runner"
)

func TestFindRoots(t *testing.T) {
	eng, err := rootseek.New()
	require.NoError(t, err)

	var out bytes.Buffer
	found, err := FindRoots(&out, eng, registry.F1, "1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	assert.Contains(t, out.String(), "Root near to guess #1 for x - 3cos(x) = 0: 1.170")

	_, err = FindRoots(&out, eng, registry.F1, "1.0,,2")
	assert.ErrorIs(t, err, domain.ErrNumericInput)

	_, err = FindRoots(&out, eng, "f9", "1.0")
	assert.ErrorIs(t, err, domain.ErrUnknownEquation)
}

func TestIntersect(t *testing.T) {
	eng, err := rootseek.New()
	require.NoError(t, err)

	var out bytes.Buffer
	ok, err := Intersect(&out, eng, 1.0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "The equations intersect at the point: (")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(fmt.Errorf("run: %w", runner.ErrInterrupted)))
	assert.Error(t, handleExecutionError(assert.AnError))
}

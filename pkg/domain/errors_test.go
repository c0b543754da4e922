package domain_test

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNumericInputError(t *testing.T) {
	err := &domain.NumericInputError{Input: "abc,2", Token: "abc", Position: 1, Err: strconv.ErrSyntax}

	assert.ErrorIs(t, err, domain.ErrNumericInput)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Contains(t, err.Error(), `"abc" at position 1`)

	wrapped := fmt.Errorf("run aborted: %w", err)
	var target *domain.NumericInputError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "abc", target.Token)

	single := &domain.NumericInputError{Input: "x", Token: "x", Err: strconv.ErrSyntax}
	assert.NotContains(t, single.Error(), "position")
}

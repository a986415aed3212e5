package controllers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey)))
	// The raw driver error, in case the dialector does not translate it.
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'")))

	assert.False(t, isDuplicateKey(nil))
	assert.False(t, isDuplicateKey(errors.New("dial tcp: connection refused")))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("alice"))
	assert.True(t, validUsername("Alice-2024"))
	assert.False(t, validUsername(""))
	assert.False(t, validUsername("alice smith"))
	assert.False(t, validUsername("alice_smith"))
	assert.False(t, validUsername("алиса"))
}

package color_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelarchive/archive-server/internal/color"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_StableAndWellFormed(t *testing.T) {
	a := color.ForUser("user_V1StGXR8Z5jdHi6BmyT")
	b := color.ForUser("user_V1StGXR8Z5jdHi6BmyT")

	assert.Equal(t, a, b)
	assert.Regexp(t, hexColor, a)
}

func TestForUser_DifferentUsersUsuallyDiffer(t *testing.T) {
	assert.NotEqual(t, color.ForUser("user_alpha"), color.ForUser("user_beta"))
}

func TestForUser_EmptyID(t *testing.T) {
	assert.Regexp(t, hexColor, color.ForUser(""))
}

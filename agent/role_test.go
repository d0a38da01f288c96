package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleIsValid(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.IsValid(), "role %s should be valid", r)
	}
	assert.False(t, Role("janitor").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"developer", RoleDeveloper, false},
		{"DEVELOPER", RoleDeveloper, false},
		{"  reviewer  ", RoleReviewer, false},
		{"janitor", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestDefaultCapabilities_Copies(t *testing.T) {
	caps := RoleDeveloper.DefaultCapabilities()
	caps[0] = "tampered"

	assert.Equal(t, "code_generation", RoleDeveloper.DefaultCapabilities()[0])
	assert.Nil(t, Role("janitor").DefaultCapabilities())
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		got, err := ParseStatus(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("sleeping")
	assert.Error(t, err)
}

package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSubsystem struct {
	name  string
	trace *[]string
}

func (s *recordingSubsystem) Name() string { return s.name }
func (s *recordingSubsystem) Reset()       { *s.trace = append(*s.trace, s.name) }

func TestRegistryResetsInRegistrationOrder(t *testing.T) {
	var trace []string
	var r Registry
	for _, name := range []string{"memory", "modules", "remote", "mmap", "threads", "hooks"} {
		r.Register(&recordingSubsystem{name: name, trace: &trace})
	}

	r.ResetAll()
	assert.Equal(t, []string{"memory", "modules", "remote", "mmap", "threads", "hooks"}, trace)
	assert.Equal(t, 6, r.Len())
}

func TestRegistryResetAllIsRepeatable(t *testing.T) {
	var trace []string
	var r Registry
	r.Register(&recordingSubsystem{name: "memory", trace: &trace})

	r.ResetAll()
	r.ResetAll()
	assert.Equal(t, []string{"memory", "memory"}, trace)
}

func TestRegistryEmptyResetAll(t *testing.T) {
	var r Registry
	assert.NotPanics(t, func() { r.ResetAll() })
}

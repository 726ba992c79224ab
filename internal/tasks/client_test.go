package tasks

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueReservationExpiry(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewTaskClient(mr.Addr(), "", "", 0)
	defer client.Close()

	err := client.EnqueueReservationExpiry(time.Now().Add(time.Hour))
	require.NoError(t, err)

	// The task must be persisted for the worker to pick up.
	assert.NotEmpty(t, mr.Keys())
}

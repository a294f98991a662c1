package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 1, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "fix-permissions/20240309T060501Z", SnapshotKey("fix-permissions", at))
}

func TestDiscard(t *testing.T) {
	loc, err := Discard{}.PutJSON(context.Background(), "k", map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Empty(t, loc)
}

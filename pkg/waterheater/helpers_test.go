package waterheater

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/platform"
)

func newPlatform(t *testing.T, entities ...platform.Entity) *platform.Platform {
	t.Helper()
	p := platform.New(time.Minute)
	if len(entities) > 0 {
		require.NoError(t, p.AddEntities(context.Background(), entities, false))
	}
	return p
}

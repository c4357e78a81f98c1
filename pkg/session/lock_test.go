package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewModel(sid))
		_ = mgr.Delete(ctx, sid)
	}

	assert.Empty(t, mgr.locks, "lock entries must be released once unused")
}

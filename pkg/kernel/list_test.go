package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// newListKernel builds a Kernel with just enough state for list.go's
// push/pop/delete to operate on — no collaborators, no scheduler — so
// these can be exercised in isolation from the rest of the lifecycle.
func newListKernel(t *testing.T, n int) *Kernel {
	t.Helper()
	k := &Kernel{cfg: Config{NPROC: n, NCPU: 1}}
	k.Procinit()
	return k
}

func TestListPushPopFIFO(t *testing.T) {
	k := newListKernel(t, 4)
	var head int = -1
	var lock sync.Mutex

	k.listPush(0, &head, &lock)
	k.listPush(1, &head, &lock)
	k.listPush(2, &head, &lock)

	require.Equal(t, 0, k.listPop(&head, &lock))
	require.Equal(t, 1, k.listPop(&head, &lock))
	require.Equal(t, 2, k.listPop(&head, &lock))
	require.Equal(t, -1, k.listPop(&head, &lock))
}

func TestListDeleteHead(t *testing.T) {
	k := newListKernel(t, 4)
	var head int = -1
	var lock sync.Mutex

	k.listPush(0, &head, &lock)
	k.listPush(1, &head, &lock)
	k.listPush(2, &head, &lock)

	require.True(t, k.listDelete(0, &head, &lock))
	require.Equal(t, 1, k.listPop(&head, &lock))
	require.Equal(t, 2, k.listPop(&head, &lock))
}

func TestListDeleteMiddleAndTail(t *testing.T) {
	k := newListKernel(t, 4)
	var head int = -1
	var lock sync.Mutex

	k.listPush(0, &head, &lock)
	k.listPush(1, &head, &lock)
	k.listPush(2, &head, &lock)

	require.True(t, k.listDelete(1, &head, &lock))
	require.True(t, k.listDelete(2, &head, &lock))

	require.Equal(t, 0, k.listPop(&head, &lock))
	require.Equal(t, -1, k.listPop(&head, &lock))
}

func TestListDeleteNotPresentIsFalse(t *testing.T) {
	k := newListKernel(t, 4)
	var head int = -1
	var lock sync.Mutex

	require.False(t, k.listDelete(0, &head, &lock))

	k.listPush(0, &head, &lock)
	require.False(t, k.listDelete(1, &head, &lock))
	require.True(t, k.listDelete(0, &head, &lock))
}

func TestQueueWrappersRouteToDistinctLists(t *testing.T) {
	k := newListKernel(t, 8)

	// Procinit already parked every slot on the unused list; drain it
	// so the wrapper-routing assertions below start from empty lists.
	for k.popUnused() != -1 {
	}

	k.pushUnused(0)
	k.pushSleeping(1)
	k.pushZombie(2)
	k.pushRunnable(k.cpus[0], 3)

	require.Equal(t, 0, k.popUnused())
	require.True(t, k.deleteSleeping(1))
	require.True(t, k.deleteZombie(2))
	require.Equal(t, 3, k.popRunnable(k.cpus[0]))
}

package depot

// Config holds process-wide tunables for the entity store and scheduler.
var Config config = config{
	chunkBytes:        16 * 1024,
	workerCount:       0,
	strictWriteSet:    false,
	maxComponentIDs:   MaxComponentIDCount,
	maxSharedComponentIDs: MaxSharedComponentIDCount,
}

type config struct {
	chunkBytes            int
	workerCount           int
	strictWriteSet        bool
	maxComponentIDs       uint32
	maxSharedComponentIDs uint32
}

// SetChunkBytes sets the fixed page size new ChunkLayouts are derived
// against. Existing archetypes keep their already-computed layout.
func (c *config) SetChunkBytes(n int) {
	c.chunkBytes = n
}

// ChunkBytes returns the configured chunk page size.
func (c *config) ChunkBytes() int {
	return c.chunkBytes
}

// SetWorkerCount sets how many per-worker CommandBuffers a World creates.
// Zero (the default) means "hardware parallelism" (runtime.GOMAXPROCS),
// resolved at World construction time. The task.Manager pool size is the
// n passed to task.NewManager / Factory.NewTaskManager and does not read
// this setting.
func (c *config) SetWorkerCount(n int) {
	c.workerCount = n
}

// WorkerCount returns the configured worker pool size.
func (c *config) WorkerCount() int {
	return c.workerCount
}

// SetStrictWriteSet stores the strict-write-set flag. Off by default. No
// code in this package reads the flag: SetComponent performs no
// write-set check whether it is on or off.
func (c *config) SetStrictWriteSet(strict bool) {
	c.strictWriteSet = strict
}

// StrictWriteSet reports the stored strict-write-set flag.
func (c *config) StrictWriteSet() bool {
	return c.strictWriteSet
}

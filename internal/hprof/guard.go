package hprof

// Guard closes the region opened by Profiler.Enter. The zero Guard closes
// nothing.
type Guard struct {
	p  *Profiler
	id uint64
}

// Leave closes the guarded region. It fires at most once: calling it again,
// or after the region was closed by Profiler.Leave or discarded by a frame
// reset, does nothing. Closing a guard while a region opened inside it is
// still open is an ErrUnbalancedLeave misuse.
func (g Guard) Leave() error {
	if g.p == nil || g.id == 0 {
		return nil
	}
	return g.p.leaveGuard(g.id)
}

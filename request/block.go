package request

// BlockAddr derives a request's block address from its physical address
// given blockBytes (the cache line size), by clearing the offset bits.
func BlockAddr(paddr uint64, blockBytes uint32) uint64 {
	mask := uint64(blockBytes) - 1
	return paddr &^ mask
}

// NormalizeTraceAddress ORs a core ID into a traced address's high bits,
// as required for per-core address normalization of shared traces (spec
// section 6): the top 16 bits of vaddr/ip, the top 32 bits of paddr.
func NormalizeTraceAddress(addr uint64, cpuID int, isPAddr bool) uint64 {
	if isPAddr {
		return addr | (uint64(cpuID) << 32)
	}

	return addr | (uint64(cpuID) << 48)
}

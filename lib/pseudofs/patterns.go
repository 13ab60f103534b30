package pseudofs

// Stock patterns for the usual Linux pseudo-files. Every pattern
// captures the interesting field in group 1.
const (
	// /proc/cpuinfo
	PatternCPUProcessor  = `processor\s+:\s+(\d+)`
	PatternCPUPhysicalID = `physical id\s+:\s+(\d+)`
	PatternCPUCoreID     = `core id\s+:\s+(\d+)`
	PatternCPUModelName  = `model name\s+:\s+(.+)`
	PatternCPUVendorID   = `vendor_id\s+:\s+(.+)`
	PatternCPUMHz        = `cpu MHz\s+:\s+([0-9.]+)`

	// /proc/meminfo
	PatternMemTotal        = `MemTotal:\s+(\d+)`
	PatternMemFree         = `MemFree:\s+(\d+)`
	PatternMemAvailable    = `MemAvailable:\s+(\d+)`
	PatternMemCached       = `Cached:\s+(\d+)`
	PatternMemBuffers      = `Buffers:\s+(\d+)`
	PatternMemActive       = `Active:\s+(\d+)`
	PatternMemInactive     = `Inactive:\s+(\d+)`
	PatternMemActiveAnon   = `Active\(anon\):\s+(\d+)`
	PatternMemInactiveAnon = `Inactive\(anon\):\s+(\d+)`
	PatternMemActiveFile   = `Active\(file\):\s+(\d+)`
	PatternMemInactiveFile = `Inactive\(file\):\s+(\d+)`
	PatternMemUnevictable  = `Unevictable:\s+(\d+)`
	PatternMemMlocked      = `Mlocked:\s+(\d+)`
	PatternMemSwapTotal    = `SwapTotal:\s+(\d+)`
	PatternMemSwapFree     = `SwapFree:\s+(\d+)`

	// Huge pages, /proc/meminfo
	PatternHugePagesTotal = `HugePages_Total:\s+(\d+)`
	PatternHugePagesFree  = `HugePages_Free:\s+(\d+)`
	PatternHugePagesRsvd  = `HugePages_Rsvd:\s+(\d+)`
	PatternHugePagesSurp  = `HugePages_Surp:\s+(\d+)`
	PatternHugePageSize   = `Hugepagesize:\s+(\d+)`

	// Direct mappings, /proc/meminfo
	PatternDirectMap4K = `DirectMap4k:\s+(\d+)`
	PatternDirectMap2M = `DirectMap2M:\s+(\d+)`
	PatternDirectMap1G = `DirectMap1G:\s+(\d+)`

	// NUMA, /sys/devices/system/node/node*/meminfo
	PatternNumaTotal = `Node\s+\d+\s+MemTotal:\s+(\d+)`
	PatternNumaFree  = `Node\s+\d+\s+MemFree:\s+(\d+)`
	PatternNumaUsed  = `Node\s+\d+\s+MemUsed:\s+(\d+)`

	// Generic "Key: value" pseudo-file row.
	PatternRowKey   = `^(\S+):`
	PatternRowValue = `:\s+(\d+)`
)

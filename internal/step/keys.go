package step

// ExecutionContext keys written by the tasklets.
const (
	KeyOutputExists = "output.exists"
	KeyRegions      = "stack.regions"
	KeyStackedRows  = "stack.rows"
	KeyPlants       = "split.plants"
	KeySplitRows    = "split.rows"
	KeyTestRows     = "split.test_rows"
	KeyOutputPath   = "export.path"
	KeyWritten      = "export.files"
)

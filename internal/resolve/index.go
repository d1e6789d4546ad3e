package resolve

import "github.com/sells-group/station-linker/internal/model"

// Index partitions registry records by region so that matching only
// considers candidates from the query's own region. Blocks keep the input
// order of the registry, which the matcher relies on for tie-breaking.
type Index struct {
	blocks  map[string][]model.RegistryRecord
	regions []string
	size    int
}

// NewIndex builds a blocking index. Records with an empty BaseName and
// Region are decomposed from StationNameRaw first.
func NewIndex(records []model.RegistryRecord) *Index {
	idx := &Index{blocks: make(map[string][]model.RegistryRecord)}
	for _, r := range records {
		if r.BaseName == "" && r.Region == "" {
			r.BaseName, r.Region = Decompose(r.StationNameRaw)
		}
		if _, ok := idx.blocks[r.Region]; !ok {
			idx.regions = append(idx.regions, r.Region)
		}
		idx.blocks[r.Region] = append(idx.blocks[r.Region], r)
		idx.size++
	}
	return idx
}

// Block returns the candidates for a region. Unknown regions yield an empty
// block. The returned slice must not be modified.
func (i *Index) Block(region string) []model.RegistryRecord {
	if i == nil {
		return nil
	}
	return i.blocks[region]
}

// Regions lists the regions present, in first-seen order. Records without a
// region are grouped under "".
func (i *Index) Regions() []string {
	out := make([]string, len(i.regions))
	copy(out, i.regions)
	return out
}

// Len returns the number of indexed records.
func (i *Index) Len() int {
	return i.size
}

package gridio

import (
	"regexp"
	"strconv"

	"github.com/airbusgeo/gridio/internal/utils"
)

// DefaultSubDatasetDescription is used when a sub-dataset has no DESC entry
const DefaultSubDatasetDescription = "no description available"

// SubDataset is an addressable dataset nested inside a container file
type SubDataset struct {
	Index       int
	Name        string // GDAL name used to open the sub-dataset
	Description string
}

var subDatasetRegexp = regexp.MustCompile(`^SUBDATASET_(?P<Index>\d+)_(?P<Key>NAME|DESC)=(?P<Value>.*)$`)

// ParseSubDatasets parses the content of the SUBDATASETS metadata domain ("KEY=VALUE" lines).
// NAME and DESC entries are paired by their index. Entries without NAME are ignored.
// Sub-datasets are returned in the order of appearance of their index.
func ParseSubDatasets(lines []string) []SubDataset {
	var order []int
	names := map[int]string{}
	descs := map[int]string{}
	for _, line := range lines {
		groups, err := utils.FindRegexGroups(subDatasetRegexp, line)
		if err != nil {
			continue
		}
		index, err := strconv.Atoi(groups["Index"])
		if err != nil {
			continue
		}
		_, hasName := names[index]
		_, hasDesc := descs[index]
		if !hasName && !hasDesc {
			order = append(order, index)
		}
		if groups["Key"] == "NAME" {
			names[index] = groups["Value"]
		} else {
			descs[index] = groups["Value"]
		}
	}

	var subdatasets []SubDataset
	for _, index := range order {
		name := names[index]
		if name == "" {
			continue
		}
		desc, ok := descs[index]
		if !ok || desc == "" {
			desc = DefaultSubDatasetDescription
		}
		subdatasets = append(subdatasets, SubDataset{Index: index, Name: name, Description: desc})
	}
	return subdatasets
}

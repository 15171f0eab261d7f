package namespace

import "fmt"

// Partition names one of the fixed top-level namespaces.
type Partition string

const (
	API     Partition = "api"
	Models  Partition = "models"
	Plugins Partition = "plugins"
)

// Partitions returns every partition in a stable order.
func Partitions() []Partition { return []Partition{API, Models, Plugins} }

// ParsePartition converts a string to a Partition.
func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case API, Models, Plugins:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPartition, s)
	}
}

func (p Partition) String() string { return string(p) }

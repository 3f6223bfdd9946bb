package badger

import (
	"fmt"

	"github.com/poiesic/conceptrank/core"
)

// Key prefixes for different data types
const (
	conceptRecordPrefix = "conrec"
	labelVectorPrefix   = "labvec"
	labelVectorDimKey   = "labdim"
)

// makeConceptKey generates a key for the record of a concept URI.
func makeConceptKey(uri string) []byte {
	return []byte(fmt.Sprintf("%s:%d", conceptRecordPrefix, core.IDFromURI(uri)))
}

// makeVectorKey generates a key for one label vector.
// Format: prefix:uriID:labelID
func makeVectorKey(v *core.LabelVector) []byte {
	labelID := core.IDFromContent(string(v.Locale) + "\x00" + v.Text)
	return []byte(fmt.Sprintf("%s:%d:%d", labelVectorPrefix, core.IDFromURI(v.URI), labelID))
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", processorType))
}

func prefixOf(prefix string) []byte {
	return []byte(prefix + ":")
}

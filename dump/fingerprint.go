package dump

import (
	"encoding/binary"
	hexenc "encoding/hex"
	"encoding/json"
	"hash"

	"github.com/zeebo/blake3"

	"pkt.systems/mdtree"
)

// Fingerprint returns a hex BLAKE3-256 digest of the structure and content of
// el. Equal trees have equal fingerprints regardless of map iteration order.
func Fingerprint(el *mdtree.Element) string {
	h := blake3.New()
	mdtree.Walk(el, func(e *mdtree.Element) bool {
		writeElement(h, e)
		return true
	})
	return hexenc.EncodeToString(h.Sum(nil))
}

func writeElement(h hash.Hash, e *mdtree.Element) {
	writeUint(h, uint64(e.Kind))
	writeString(h, e.Tag)
	if e.Component != nil {
		writeUint(h, 1)
		writeString(h, e.Component.ComponentName())
	} else {
		writeUint(h, 0)
	}
	// encoding/json sorts map keys.
	props, err := json.Marshal(e.Props)
	if err != nil {
		props = []byte(formatValue(e.Props))
	}
	writeString(h, string(props))
	writeString(h, e.Text)
	writeUint(h, uint64(len(e.Children)))
	names := mdtree.SlotNames(e)
	writeUint(h, uint64(len(names)))
	for _, name := range names {
		writeString(h, name)
		writeUint(h, uint64(len(e.Slots[name])))
	}
}

func writeUint(h hash.Hash, v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	h.Write(buf[:n])
}

func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

package places

import (
	"fmt"
	"strings"
)

// Kind partitions places into the lists a Manager maintains.
type Kind int

const (
	KindSpecial Kind = iota
	KindDevices
	KindBookmarks
	KindNetwork
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{KindSpecial, KindDevices, KindBookmarks, KindNetwork}

var kindNames = [...]string{
	KindSpecial:   "special",
	KindDevices:   "devices",
	KindBookmarks: "bookmarks",
	KindNetwork:   "network",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown place kind %q (want one of %s)", s, strings.Join(kindNames[:], ", "))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

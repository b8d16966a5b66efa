package record

// Key identifies one package type in the catalog.
type Key string

// Catalog keys. The set is fixed process-wide configuration; records may
// reference any subset of it and unlisted keys count as zero.
const (
	KeyStandard110x115 Key = "110x110x115"
	KeyStandard110x75  Key = "110x110x75"
	KeyStandard114x115 Key = "114x114x115"
	KeyReturnable      Key = "RETURNABLE"
	KeyUnit            Key = "UNIT"
	KeyBox57x37x39     Key = "57x37x39"
	KeyBox60x40x41     Key = "60x40x41"
	KeyBox80x60x41     Key = "80x60x41"
	KeyWarp            Key = "WARP"
)

// Catalog group names. Every key belongs to exactly one group.
const (
	GroupStandard   = "Standard Package"
	GroupReturnable = "Returnable Package"
	GroupBoxes      = "Boxes Package"
	GroupWarp       = "Warp Package"
)

var catalogKeys = []Key{
	KeyStandard110x115,
	KeyStandard110x75,
	KeyStandard114x115,
	KeyReturnable,
	KeyUnit,
	KeyBox57x37x39,
	KeyBox60x40x41,
	KeyBox80x60x41,
	KeyWarp,
}

var groupNames = []string{
	GroupStandard,
	GroupReturnable,
	GroupBoxes,
	GroupWarp,
}

var keyGroups = map[Key]string{
	KeyStandard110x115: GroupStandard,
	KeyStandard110x75:  GroupStandard,
	KeyStandard114x115: GroupStandard,
	KeyReturnable:      GroupReturnable,
	KeyUnit:            GroupReturnable,
	KeyBox57x37x39:     GroupBoxes,
	KeyBox60x40x41:     GroupBoxes,
	KeyBox80x60x41:     GroupBoxes,
	KeyWarp:            GroupWarp,
}

// keyRatios holds the number of physical package units that equal one
// capacity unit. Keys without an entry have ratio 1. Never zero.
var keyRatios = map[Key]float64{
	KeyReturnable:  2,
	KeyBox57x37x39: 4,
	KeyBox60x40x41: 4,
	KeyBox80x60x41: 2,
	KeyWarp:        30,
}

// Keys returns the ordered catalog key list.
func Keys() []Key {
	out := make([]Key, len(catalogKeys))
	copy(out, catalogKeys)
	return out
}

// Groups returns the ordered list of catalog group names.
func Groups() []string {
	out := make([]string, len(groupNames))
	copy(out, groupNames)
	return out
}

// GroupOf returns the group a catalog key belongs to, or "" for unknown keys.
func GroupOf(key Key) string {
	return keyGroups[key]
}

// KeysInGroup returns the catalog keys belonging to the given group,
// in catalog order.
func KeysInGroup(group string) []Key {
	var out []Key
	for _, key := range catalogKeys {
		if keyGroups[key] == group {
			out = append(out, key)
		}
	}
	return out
}

// Ratio returns the capacity ratio for a key, defaulting to 1.
func Ratio(key Key) float64 {
	if ratio, ok := keyRatios[key]; ok {
		return ratio
	}
	return 1
}

// IsCatalogKey reports whether a raw header or column name is a catalog key.
func IsCatalogKey(name string) bool {
	_, ok := keyGroups[Key(name)]
	return ok
}

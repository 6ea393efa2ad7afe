package kernel

import "strings"

// Size is a garment size. The set is closed.
type Size string

const (
	SizeXS Size = "XS"
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

// AllSizes in ascending order
var AllSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// ParseSize accepts a size in any letter case
func ParseSize(s string) (Size, bool) {
	size := Size(strings.ToUpper(strings.TrimSpace(s)))
	return size, size.IsValid()
}

func (s Size) IsValid() bool {
	for _, v := range AllSizes {
		if s == v {
			return true
		}
	}
	return false
}

func (s Size) String() string { return string(s) }

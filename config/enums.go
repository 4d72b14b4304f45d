package config

import "fmt"

// PaperSize selects page dimensions for the generated document.
type PaperSize int

const (
	PaperSizeLetter PaperSize = iota
	PaperSizeA4
)

var paperSizeNames = map[PaperSize]string{
	PaperSizeLetter: "letter",
	PaperSizeA4:     "a4",
}

// ParsePaperSize converts textual representation to PaperSize.
func ParsePaperSize(name string) (PaperSize, error) {
	for k, v := range paperSizeNames {
		if v == name {
			return k, nil
		}
	}
	return PaperSizeLetter, fmt.Errorf("unknown paper size: %s", name)
}

// PaperSizeNames returns all supported textual representations.
func PaperSizeNames() []string {
	return []string{paperSizeNames[PaperSizeLetter], paperSizeNames[PaperSizeA4]}
}

func (s PaperSize) String() string {
	if n, ok := paperSizeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("PaperSize(%d)", int(s))
}

// Dimensions returns page width and height in twips.
func (s PaperSize) Dimensions() (w, h int) {
	switch s {
	case PaperSizeA4:
		return 11906, 16838
	default:
		return 12240, 15840
	}
}

func (s *PaperSize) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	v, err := ParsePaperSize(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s PaperSize) MarshalYAML() (any, error) {
	return s.String(), nil
}

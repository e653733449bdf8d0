package vm

import "sexpvm/internal/translate"

// LoadImage installs a translated program into a fresh ControlUnit.
func LoadImage(img *translate.Image, opts ...OptionFn) (*ControlUnit, error) {
	cu := New(opts...)

	if err := cu.Load(img.Memory); err != nil {
		return nil, err
	}

	return cu, nil
}

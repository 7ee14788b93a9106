package tourpackage

import "fmt"

// AvailableSlots は定員から消費済み人数を引いた空き枠を返す。
// Private パッケージは定員の概念がないため limited=false を返す。
func (p *Package) AvailableSlots(consumed int) (slots int, limited bool, err error) {
	if !p.IsRegular() {
		return 0, false, nil
	}
	if p.Quota == nil {
		return 0, true, fmt.Errorf("定員が未設定: %w", ErrInvalidConfiguration)
	}
	return *p.Quota - consumed, true, nil
}

// CanAccommodate は requested 人を追加で受け入れられるかを返す
func (p *Package) CanAccommodate(consumed, requested int) (bool, error) {
	slots, limited, err := p.AvailableSlots(consumed)
	if err != nil {
		return false, err
	}
	if !limited {
		return true, nil
	}
	return requested <= slots, nil
}

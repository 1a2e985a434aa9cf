package block

import (
	"encoding/json"
	"fmt"
	"math"
)

// plainDescriptor has Descriptor's fields without its JSON methods.
type plainDescriptor Descriptor

// descriptorJSON is the wire view of a Descriptor. Symbols travel as
// [re, im] pairs.
type descriptorJSON struct {
	*plainDescriptor
	Symbols        [][2]float32    `json:"symbols"`
	MimoSymbols    [2][][2]float32 `json:"mimo_symbols"`
	ControlSymbols [2][][2]float32 `json:"control_symbols"`
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := descriptorJSON{plainDescriptor: (*plainDescriptor)(&d)}
	var err error
	if out.Symbols, err = toPairs("symbols", d.Symbols); err != nil {
		return nil, err
	}
	for i := range d.MimoSymbols {
		if out.MimoSymbols[i], err = toPairs(fmt.Sprintf("mimo_symbols[%d]", i), d.MimoSymbols[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.ControlSymbols {
		if out.ControlSymbols[i], err = toPairs(fmt.Sprintf("control_symbols[%d]", i), d.ControlSymbols[i]); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON fills d from raw. Sections absent from raw keep their
// current values, so defaults from NewDescriptor survive partial input.
func (d *Descriptor) UnmarshalJSON(raw []byte) error {
	in := descriptorJSON{plainDescriptor: (*plainDescriptor)(d)}
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	if in.Symbols != nil {
		d.Symbols = fromPairs(in.Symbols)
	}
	for i := range in.MimoSymbols {
		if in.MimoSymbols[i] != nil {
			d.MimoSymbols[i] = fromPairs(in.MimoSymbols[i])
		}
	}
	for i := range in.ControlSymbols {
		if in.ControlSymbols[i] != nil {
			d.ControlSymbols[i] = fromPairs(in.ControlSymbols[i])
		}
	}
	return nil
}

func toPairs(section string, symbols []complex64) ([][2]float32, error) {
	out := make([][2]float32, len(symbols))
	for i, s := range symbols {
		re, im := real(s), imag(s)
		if !finite(re) || !finite(im) {
			return nil, fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidSymbol, section, i)
		}
		out[i] = [2]float32{re, im}
	}
	return out, nil
}

func fromPairs(pairs [][2]float32) []complex64 {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]complex64, len(pairs))
	for i, p := range pairs {
		out[i] = complex(p[0], p[1])
	}
	return out
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

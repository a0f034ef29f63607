package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Recognized top-level effect keys besides the stat names.
const (
	EffectShortMode = "shortMode"
	EffectAddLore   = "addLore"
)

// Effects is the state mutation carried by a choice.
// The story document stores it as a flat record; recognized keys land in
// typed fields and every other boolean key becomes a flag write.
type Effects struct {
	// Deltas holds additive changes for the numeric stats.
	Deltas map[string]int
	// ShortMode overwrites State.ShortMode when set.
	ShortMode *bool
	// AddLore lists lore slugs to register as discovered.
	AddLore []string
	// Flags holds generic flag writes.
	Flags map[string]bool
}

// effectsDoc is the decoding shape: known keys plus the residual mapping.
type effectsDoc struct {
	Heat      any            `mapstructure:"heat"`
	Cyber     any            `mapstructure:"cyber"`
	Empathy   any            `mapstructure:"empathy"`
	Credits   any            `mapstructure:"credits"`
	CorpRep   any            `mapstructure:"corpRep"`
	ShortMode any            `mapstructure:"shortMode"`
	AddLore   any            `mapstructure:"addLore"`
	Rest      map[string]any `mapstructure:",remain"`
}

// DecodeEffects builds Effects from a raw effect record.
// Stat keys with non-numeric or fractional values and residual keys with
// non-boolean values are dropped.
func DecodeEffects(raw map[string]any) (*Effects, error) {
	var doc effectsDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &doc,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode effects: %w", err)
	}

	eff := &Effects{}
	stats := map[string]any{
		StatHeat:    doc.Heat,
		StatCyber:   doc.Cyber,
		StatEmpathy: doc.Empathy,
		StatCredits: doc.Credits,
		StatCorpRep: doc.CorpRep,
	}
	for name, v := range stats {
		n, ok := AsNumber(v)
		if !ok || n != math.Trunc(n) || !fitsInt(n) {
			continue
		}
		if eff.Deltas == nil {
			eff.Deltas = make(map[string]int)
		}
		eff.Deltas[name] = int(n)
	}

	if b, ok := doc.ShortMode.(bool); ok {
		eff.ShortMode = &b
	}

	switch lore := doc.AddLore.(type) {
	case string:
		if lore != "" {
			eff.AddLore = []string{lore}
		}
	case []string:
		eff.AddLore = append(eff.AddLore, lore...)
	case []any:
		for _, item := range lore {
			if slug, ok := item.(string); ok && slug != "" {
				eff.AddLore = append(eff.AddLore, slug)
			}
		}
	}

	for k, v := range doc.Rest {
		b, ok := v.(bool)
		if !ok {
			continue
		}
		if eff.Flags == nil {
			eff.Flags = make(map[string]bool)
		}
		eff.Flags[k] = b
	}
	return eff, nil
}

// fitsInt reports whether the whole number n converts to int without wrapping.
func fitsInt(n float64) bool {
	return n >= float64(math.MinInt) && n < -float64(math.MinInt)
}

// Record flattens the effects back into the story document shape.
func (e Effects) Record() map[string]any {
	out := make(map[string]any)
	for k, v := range e.Flags {
		out[k] = v
	}
	for k, v := range e.Deltas {
		out[k] = v
	}
	if e.ShortMode != nil {
		out[EffectShortMode] = *e.ShortMode
	}
	if len(e.AddLore) > 0 {
		out[EffectAddLore] = e.AddLore
	}
	return out
}

// UnmarshalJSON decodes a flat effect record.
func (e *Effects) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	eff, err := DecodeEffects(raw)
	if err != nil {
		return err
	}
	*e = *eff
	return nil
}

// UnmarshalYAML decodes a flat effect record.
func (e *Effects) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	eff, err := DecodeEffects(raw)
	if err != nil {
		return err
	}
	*e = *eff
	return nil
}

// MarshalJSON encodes the flat effect record.
func (e Effects) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}
